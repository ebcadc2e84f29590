package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP identifica o cliente pelo host de RemoteAddr. Cabeçalhos de proxy
// só são considerados quando chi middleware.RealIP reescreveu RemoteAddr antes.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}

	return host
}
