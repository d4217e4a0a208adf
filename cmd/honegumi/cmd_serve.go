// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/honegumi/services/configurator"
)

type serveOptions struct {
	addr string
}

// runServe serves the configurator from the store filled by generate.
func runServe(cmd *cobra.Command, a *app, opts serveOptions) error {
	store, err := a.openStore(false)
	if err != nil {
		return err
	}
	defer store.Close()

	assembler, err := a.assembler()
	if err != nil {
		return err
	}

	srv, err := configurator.NewServer(configurator.Config{
		Engine:        a.engine,
		Store:         store,
		Assembler:     assembler,
		Title:         a.cfg.Output.Title,
		RatePerSecond: a.cfg.Serve.RatePerSecond,
		Burst:         a.cfg.Serve.Burst,
		Logger:        a.logger,
	})
	if err != nil {
		return err
	}

	addr := a.cfg.Serve.Addr
	if opts.addr != "" {
		addr = opts.addr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.out.Success("serving on http://" + ln.Addr().String())
	return srv.Serve(ctx, ln)
}
