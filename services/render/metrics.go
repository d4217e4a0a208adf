// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package render

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("honegumi.render")

var (
	combinationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "honegumi_render_combinations_total",
		Help: "Combinations processed by the render pipeline, by verdict",
	}, []string{"verdict"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "honegumi_render_stage_duration_seconds",
		Help:    "Duration of render pipeline stages",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{"stage"})

	testOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "honegumi_render_test_outcomes_total",
		Help: "Generated test outcomes merged into the lookup tables",
	}, []string{"outcome"})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "honegumi_render_runs_total",
		Help: "Pipeline runs, by status",
	}, []string{"status"})
)
