// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package configurator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "honegumi_configurator_requests_total",
		Help: "HTTP requests handled by the configurator, by route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "honegumi_configurator_request_duration_seconds",
		Help:    "Latency of configurator HTTP requests.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"method", "route"})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "honegumi_configurator_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})

	deviationSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "honegumi_configurator_deviations",
		Help:    "Number of deviations returned per request.",
		Buckets: prometheus.LinearBuckets(0, 2, 12),
	})
)
