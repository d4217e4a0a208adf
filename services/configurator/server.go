// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package configurator serves the interactive path over HTTP.
//
// The batch pipeline fills a lookup store; this package answers live
// questions against it and against the engine:
//
//	GET  /                  assembled page (when an Assembler is configured)
//	GET  /v1/schema         visible rows
//	POST /v1/deviations     verdict, stem and deviation hints for a selection
//	GET  /v1/scripts/:stem  stored entry
//	GET  /v1/invalid        invalid configurations
//	GET  /healthz
//	GET  /metrics
//
// The Engine and Schema are immutable, so handlers share them; each request
// parses its own Selection.
package configurator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/honegumi/pkg/logging"
	"github.com/AleutianAI/honegumi/pkg/options"
	"github.com/AleutianAI/honegumi/services/lookup"
	"github.com/AleutianAI/honegumi/services/site"
)

const shutdownTimeout = 5 * time.Second

var tracer = otel.Tracer("honegumi.configurator")

// Config wires a Server.
type Config struct {
	Engine *options.Engine `validate:"required"`
	Store  lookup.Store    `validate:"required"`

	// Assembler, when set, serves the page at "/" from the store.
	Assembler *site.Assembler
	Title     string

	// RatePerSecond <= 0 disables rate limiting.
	RatePerSecond float64
	Burst         int `validate:"gte=0"`

	// ServiceName labels spans from otelgin. Default: "honegumi-configurator".
	ServiceName string

	Logger *logging.Logger
}

// Server is the configurator HTTP API.
type Server struct {
	cfg    Config
	router *gin.Engine
	logger *logging.Logger
}

// NewServer validates cfg and builds the router.
//
// # Description
//
// Middleware order: recovery, tracing, metrics, logging, then the rate
// limiter, so rejected requests are still traced and counted.
//
// # Outputs
//
//   - *Server: ready to Serve or to use as an http.Handler
//   - error: cfg failed validation
func NewServer(cfg Config) (*Server, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configurator config: %w", err)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "honegumi-configurator"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst == 0 {
			burst = int(cfg.RatePerSecond) + 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	s := &Server{cfg: cfg, logger: logger}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(RequestMetrics())
	router.Use(RequestLogger(logger))

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := router.Group("/", RateLimit(limiter))
	if cfg.Assembler != nil {
		limited.GET("/", s.handlePage)
	}
	v1 := limited.Group("/v1")
	{
		v1.GET("/schema", s.handleSchema)
		v1.POST("/deviations", s.handleDeviations)
		v1.GET("/scripts/:stem", s.handleScript)
		v1.GET("/invalid", s.handleInvalid)
	}
	s.router = router
	return s, nil
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("configurator listening", "addr", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.logger.Info("configurator stopped")
		return nil
	})
	return g.Wait()
}

// ===== Handlers =====

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSchema(c *gin.Context) {
	schema := s.cfg.Engine.Schema()
	resp := SchemaResponse{Names: schema.VisibleNames()}
	for _, row := range schema.Visible() {
		resp.Rows = append(resp.Rows, SchemaRow{Name: row.Name, Tooltip: row.Tooltip, Options: row.OptionStrings()})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeviations(c *gin.Context) {
	var req DeviationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	ctx, span := tracer.Start(c.Request.Context(), "configurator.Deviations")
	defer span.End()

	sel, err := s.cfg.Engine.Schema().ParseSelection(req.Selection)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	combo := s.cfg.Engine.Prepare(sel)
	devs := s.cfg.Engine.Deviations(sel)
	resp := DeviationResponse{
		Stem:       combo.Stem,
		Compatible: combo.Compatible,
		Violations: append([]string{}, combo.Violations...),
		Deviations: make([]DeviationView, 0, devs.Len()),
	}
	for _, d := range devs.Items() {
		resp.Deviations = append(resp.Deviations, DeviationView{Name: d.Name, Value: d.Value.String()})
	}
	if entry, err := s.cfg.Store.Get(ctx, combo.Stem); err == nil {
		resp.Script = entry.Script
	} else if !errors.Is(err, lookup.ErrNotFound) {
		s.logger.Warn("lookup failed", "stem", combo.Stem, "error", err)
	}

	span.SetAttributes(
		attribute.String("stem", combo.Stem),
		attribute.Bool("compatible", combo.Compatible),
		attribute.Int("deviations", devs.Len()),
	)
	deviationSize.Observe(float64(devs.Len()))
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleScript(c *gin.Context) {
	stem := c.Param("stem")
	entry, err := s.cfg.Store.Get(c.Request.Context(), stem)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, entry)
	case errors.Is(err, lookup.ErrNotFound):
		if _, lerr := s.cfg.Engine.Lookup(stem); lerr != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: lerr.Error()})
			return
		}
		c.JSON(http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("no generated entry for %q", stem)})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "lookup failed"})
	}
}

func (s *Server) handleInvalid(c *gin.Context) {
	tables, err := lookup.Load(c.Request.Context(), s.cfg.Store)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, InvalidResponse{
		Names:   s.cfg.Engine.Schema().VisibleNames(),
		Configs: tables.InvalidConfigs,
		Stems:   tables.InvalidStems,
	})
}

func (s *Server) handlePage(c *gin.Context) {
	ctx := c.Request.Context()
	tables, err := lookup.Load(ctx, s.cfg.Store)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "lookup failed")
		return
	}
	meta := site.Meta{Title: s.cfg.Title}
	if m, err := s.cfg.Store.Manifest(ctx); err == nil {
		meta.RunID = m.RunID
		meta.GeneratedAt = m.GeneratedAt
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := s.cfg.Assembler.Render(c.Writer, s.cfg.Engine.Schema(), tables, meta); err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}
