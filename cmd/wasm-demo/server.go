// Command wasm-demo serves the WebGL build of cmd/image.
//
//	GOOS=js GOARCH=wasm go build -o cmd/wasm-demo/main.wasm ./cmd/image
//	cp "$(go env GOROOT)/lib/wasm/wasm_exec.js" cmd/wasm-demo/
//	go run ./cmd/wasm-demo
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dir := flag.String("dir", filepath.Join("cmd", "wasm-demo"), "directory holding index.html, main.wasm and wasm_exec.js")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	mux := http.NewServeMux()
	fs := http.FileServer(http.Dir(*dir))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.ServeFile(w, r, filepath.Join(*dir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	})

	srv := &http.Server{Addr: *addr, Handler: logRequests(logger, mux)}

	go func() {
		logger.Info("serving", "addr", *addr, "dir", *dir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}

func logRequests(logger *slog.Logger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("request", "method", r.Method, "path", r.URL.Path)
		h.ServeHTTP(w, r)
	})
}
