// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

// =============================================================================
// Spinner Tests
// =============================================================================

func TestSpinner_PlainPrintsOnce(t *testing.T) {
	var buf bytes.Buffer
	spin := NewPlainPrinter(&buf).Spinner("rendering")
	spin.Start()
	spin.Start()
	spin.Stop()
	spin.Stop()
	assert.Equal(t, "PROGRESS: rendering\n", buf.String())
}

func TestSpinner_StyledAnimatesAndClears(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer
	p := &Printer{w: &buf}
	spin := p.Spinner("rendering")
	spin.Start()
	time.Sleep(3 * spinnerInterval)
	spin.Update("testing")
	time.Sleep(2 * spinnerInterval)
	spin.Stop()

	out := buf.String()
	assert.Contains(t, out, "rendering")
	assert.Contains(t, out, "testing")
	assert.True(t, strings.HasSuffix(out, "\r\033[K"), "line is cleared on stop")
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	NewPlainPrinter(&buf).Spinner("idle").Stop()
	assert.Empty(t, buf.String())
}

func TestSpinner_Restart(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer
	spin := (&Printer{w: &buf}).Spinner("again")
	spin.Start()
	spin.Stop()
	spin.Start()
	spin.Stop()
}

// =============================================================================
// WithSpinner Tests
// =============================================================================

func TestWithSpinner(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	assert.NoError(t, p.WithSpinner("ok step", func() error { return nil }))
	assert.Equal(t, "PROGRESS: ok step\n", buf.String())

	buf.Reset()
	boom := errors.New("boom")
	err := p.WithSpinner("bad step", func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), "ERROR: bad step: boom")
}
