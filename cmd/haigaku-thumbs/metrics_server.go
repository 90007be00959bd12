package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/middleware"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/startup"
)

func newMetricsRouter() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods("GET").Name("metrics")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods("GET").Name("health")
	r.Use(middleware.Logger())
	return r
}

// metricsServer serves /metrics while a render runs.
type metricsServer struct {
	srv      *http.Server
	listener net.Listener
}

// startMetricsServer binds addr before returning so a bad address fails the
// command instead of a background goroutine.
func startMetricsServer(addr string) (*metricsServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	router := newMetricsRouter()
	startup.LogMetricsServer(listener.Addr().String(), router)

	s := &metricsServer{
		srv: &http.Server{
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
		listener: listener,
	}

	go func() {
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server error: %v", err)
		}
	}()

	return s, nil
}

func (s *metricsServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		logging.Warn("Metrics server shutdown error: %v", err)
	}
}
