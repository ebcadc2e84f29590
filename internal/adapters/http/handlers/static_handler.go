package handlers

import (
	"net/http"
	"path/filepath"
	"strings"
)

// IndexHandler entrega o documento de entrada do front-end.
func IndexHandler(dir string) http.HandlerFunc {
	index := filepath.Join(dir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, index)
	}
}

// StaticHandler entrega os demais arquivos de dir, sem listar diretórios.
func StaticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
