// Backend is a stub HTTP endpoint for exercising the status page locally.
// It answers one path with a fixed status code, optionally after a delay,
// so a single binary can stand in for a healthy proxy, a failing backend or
// one that never answers within the probe timeout.
//
// Usage:
//
//	go run backend.go -port 1027 -path /version
//	go run backend.go -port 1028 -path /version -status 503
//	go run backend.go -port 1029 -path /version -delay 5s
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	path := flag.String("path", "/health", "path to answer")
	status := flag.Int("status", http.StatusOK, "status code to return")
	delay := flag.Duration("delay", 0, "wait before answering")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	mux := http.NewServeMux()
	mux.HandleFunc(*path, func(w http.ResponseWriter, r *http.Request) {
		log.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("from", r.RemoteAddr))

		if *delay > 0 {
			select {
			case <-time.After(*delay):
			case <-r.Context().Done():
				return
			}
		}

		w.WriteHeader(*status)
		fmt.Fprintln(w, http.StatusText(*status))
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Info("starting stub backend",
		slog.String("addr", addr),
		slog.String("path", *path),
		slog.Int("status", *status),
		slog.Duration("delay", *delay))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("server failed", slog.Any("err", err))
		os.Exit(1)
	}
}
