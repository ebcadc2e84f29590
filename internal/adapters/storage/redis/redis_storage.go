// Package redis disponibiliza a implementação do storage baseada em Redis.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/ports"
)

// admitScript mantém um sorted set por chave, com score no instante de admissão em ms.
// KEYS[1] chave; ARGV: now, cutoff, limit, window, member.
var admitScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[2])
local count = redis.call('ZCARD', KEYS[1])
local oldest = 0
if count > 0 then
  local first = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  oldest = tonumber(first[2])
end
if count >= tonumber(ARGV[3]) then
  return {0, count, oldest}
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[5])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
if count == 0 then
  oldest = tonumber(ARGV[1])
end
return {1, count + 1, oldest}
`)

type Storage struct {
	client *redis.Client
}

var _ ports.WindowStore = (*Storage)(nil)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) (*Storage, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Storage{client: client}, nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

// Admit poda, conta e registra numa única chamada de script; chamadas
// concorrentes na mesma chave não ocupam juntas a última vaga. A chave expira
// uma janela após a última admissão.
func (s *Storage) Admit(ctx context.Context, key string, now time.Time, rule domain.RateLimitRule) (domain.WindowResult, error) {
	nowMs := now.UnixMilli()
	windowMs := rule.Window.Milliseconds()
	member := uuid.NewString()

	res, err := admitScript.Run(ctx, s.client, []string{key},
		strconv.FormatInt(nowMs, 10),
		strconv.FormatInt(nowMs-windowMs, 10),
		strconv.Itoa(rule.Requests),
		strconv.FormatInt(windowMs, 10),
		member,
	).Int64Slice()
	if err != nil {
		return domain.WindowResult{}, err
	}
	if len(res) != 3 {
		return domain.WindowResult{}, fmt.Errorf("unexpected admit reply length %d", len(res))
	}

	out := domain.WindowResult{
		Allowed: res[0] == 1,
		Count:   int(res[1]),
	}
	if res[2] > 0 {
		out.Oldest = time.UnixMilli(res[2])
	}
	return out, nil
}
