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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/honegumi/cmd/honegumi/config"
	"github.com/AleutianAI/honegumi/pkg/ux"
)

func runConfigInit(cmd *cobra.Command, path string, force bool) error {
	if err := config.CreateDefault(path, force); err != nil {
		return err
	}
	ux.NewPrinter(cmd.OutOrStdout()).Success("wrote " + path)
	return nil
}

func runConfigShow(cmd *cobra.Command, a *app) error {
	data, err := config.Marshal(a.cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
