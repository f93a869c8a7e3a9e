// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package api exposes the hub over HTTP: status, integration lifecycle,
// sensor reads, control writes, weather windows and a websocket stream.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DataDog/hearth/pkg/integrations"
	"github.com/DataDog/hearth/pkg/integrations/weather"
	"github.com/DataDog/hearth/pkg/monitor"
	"github.com/DataDog/hearth/pkg/sensorbus"
	"github.com/DataDog/hearth/pkg/telemetry"
	"github.com/DataDog/hearth/pkg/util/log"
)

// Deps carries everything the handlers reach into.
type Deps struct {
	Registry *integrations.Registry
	Bus      *sensorbus.Bus
	Monitors *monitor.Manager
	// Weather is nil when the weather integration is switched off in the
	// process config; its routes then answer 503.
	Weather *weather.Engines
}

// Server is the hub's HTTP front end.
type Server struct {
	deps      Deps
	router    *mux.Router
	srv       *http.Server
	startedAt time.Time
	upgrader  websocket.Upgrader
}

// NewServer builds the router. Start actually binds.
func NewServer(deps Deps) *Server {
	s := &Server{
		deps:      deps,
		router:    mux.NewRouter(),
		startedAt: time.Now().UTC(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/live", s.handleLive).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(telemetry.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/integrations", s.handleListIntegrations).Methods(http.MethodGet)
	v1.HandleFunc("/integrations/{id}/enable", s.handleEnable).Methods(http.MethodPost)
	v1.HandleFunc("/integrations/{id}/disable", s.handleDisable).Methods(http.MethodPost)
	v1.HandleFunc("/integrations/{id}/settings", s.handleSettings).Methods(http.MethodPut)
	v1.HandleFunc("/integrations/{id}/sync", s.handleSync).Methods(http.MethodPost)
	v1.HandleFunc("/integrations/{id}/health", s.handleIntegrationHealth).Methods(http.MethodGet)
	v1.HandleFunc("/control", s.handleControl).Methods(http.MethodPost)
	v1.HandleFunc("/sensors/latest", s.handleLatestSensors).Methods(http.MethodGet)
	v1.HandleFunc("/weather/{window}", s.handleWeather).Methods(http.MethodGet)
	v1.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start binds addr and serves in the background.
func (s *Server) Start(addr string) {
	s.srv = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	go func() {
		log.Infof("api listening on %s", addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("api server: %v", err)
		}
	}()
}

// Stop drains in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
