// Package pprofserver exposes the standard pprof handlers on a loopback
// port for profiling a running broadcast.
package pprofserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
)

// Handle registers the pprof handlers on the mux.
func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

// Launch serves pprof on the ipv6 loopback at the given port (":6060") in a
// background goroutine. A listen failure is logged, not fatal; profiling
// is optional tooling and must never take the broadcast down with it.
func Launch(port string, logger *slog.Logger) {
	mux := http.NewServeMux()
	Handle(mux)
	server := &http.Server{
		Addr:    fmt.Sprintf("[::1]%s", port),
		Handler: mux,
	}
	go func() {
		logger.Info("starting pprof server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil {
			logger.Error("pprof server stopped", slog.String("error", err.Error()))
		}
	}()
}
