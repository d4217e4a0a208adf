// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ax

import (
	"embed"
)

// ScriptTemplateName is the file name of the bundled script template.
const ScriptTemplateName = "main.py.tmpl"

// Templates holds the bundled text/template sources under templates/.
//
//go:embed templates/*.tmpl
var Templates embed.FS

// ScriptTemplate returns the bundled Ax script template source.
func ScriptTemplate() string {
	data, err := Templates.ReadFile("templates/" + ScriptTemplateName)
	if err != nil {
		// embedded at build time
		panic(err)
	}
	return string(data)
}
