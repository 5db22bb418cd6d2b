// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/tomtom215/horus/docs" // registers the OpenAPI document with swag
	"github.com/tomtom215/horus/internal/config"
	"github.com/tomtom215/horus/internal/middleware"
)

// Router assembles the chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. cfg may be nil for defaults.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	mwCfg := DefaultChiMiddlewareConfig()
	if cfg != nil {
		mwCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
		if cfg.Security.RateLimitReqs > 0 {
			mwCfg.RateLimitRequests = cfg.Security.RateLimitReqs
		}
		if cfg.Security.RateLimitWindow > 0 {
			mwCfg.RateLimitWindow = cfg.Security.RateLimitWindow
		}
		mwCfg.RateLimitDisabled = cfg.Security.RateLimitDisabled
	}

	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwCfg),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, CodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1/log", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.With(router.chiMiddleware.RateLimit(), middleware.Compression).Get("/", router.handler.ListEvents)
		r.With(router.chiMiddleware.RateLimitIngest()).Post("/", router.handler.IngestEvents)

		r.Route("/anomalies", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimit(), middleware.Compression).Get("/", router.handler.ListAnomalies)
			r.With(router.chiMiddleware.RateLimitAnalysis()).Post("/", router.handler.RunAnalysis)
			r.With(router.chiMiddleware.RateLimitAnalysis()).Delete("/", router.handler.DeleteAnomalies)
		})

		r.With(router.chiMiddleware.RateLimit()).Get("/watermark", router.handler.GetWatermark)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
