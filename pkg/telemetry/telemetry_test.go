// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func resetGlobals(t *testing.T) {
	t.Cleanup(func() {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(noop.NewMeterProvider())
	})
}

func TestInit_NilContext(t *testing.T) {
	//nolint:staticcheck // exercising the nil guard
	_, err := Init(nil, Config{})
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestInit_ZeroConfigIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{TraceExporter: "jaeger-thrift"})
	assert.ErrorIs(t, err, ErrUnknownExporter)

	_, err = Init(context.Background(), Config{MetricExporter: "statsd"})
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInit_StdoutTraces(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{
		ServiceName:   "honegumi-test",
		TraceExporter: ExporterStdout,
		Output:        &buf,
	})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "render.Pipeline.Run")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "render.Pipeline.Run")
	assert.Contains(t, buf.String(), "honegumi-test")
}

func TestInit_StdoutMetrics(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{MetricExporter: ExporterStdout, Output: &buf})
	require.NoError(t, err)

	counter, err := otel.Meter("test").Int64Counter("honegumi_test_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "honegumi_test_total")
}

func TestInit_Prometheus(t *testing.T) {
	resetGlobals(t)
	shutdown, err := Init(context.Background(), Config{MetricExporter: ExporterPrometheus})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
