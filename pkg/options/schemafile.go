// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package options

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// schemaFile is the on-disk layout of a schema.
//
//	rows:
//	  - name: objective
//	    options: [single, multi]
//	    tooltip: Choose between single and multi-objective optimization.
//	  - name: custom_gen
//	    options: [false, true]
//	    hidden: true
type schemaFile struct {
	Rows []OptionRow `yaml:"rows"`
}

// ParseSchema builds a Schema from YAML.
func ParseSchema(data []byte) (*Schema, error) {
	var f schemaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if len(f.Rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidSchema)
	}
	return NewSchema(f.Rows...)
}

// LoadSchema reads and parses a YAML schema file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// MarshalSchema renders s in the format ParseSchema reads.
func MarshalSchema(s *Schema) ([]byte, error) {
	return yaml.Marshal(schemaFile{Rows: s.rows})
}
