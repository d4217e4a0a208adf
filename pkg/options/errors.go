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
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownOption is returned when a selection names a row the schema does not declare.
	ErrUnknownOption = errors.New("unknown option")

	// ErrInvalidValue is returned when a value is not one of the row's options.
	ErrInvalidValue = errors.New("invalid option value")

	// ErrMissingOption is returned when user input omits a visible row.
	ErrMissingOption = errors.New("missing option")

	// ErrMalformedStem is returned when a stem cannot be split into name/value pairs.
	ErrMalformedStem = errors.New("malformed stem")

	// ErrInvalidSchema wraps every schema construction failure.
	ErrInvalidSchema = errors.New("invalid option schema")
)

// MissingFieldError reports a Selection that lacks required fields after
// derivation.
//
// # Description
//
// This is a contract violation, not a user error: it means a Deriver or the
// enumerator failed to populate a row. RequireFields panics with this value
// so the bug surfaces immediately instead of being defaulted away.
//
// # Example
//
//	defer func() {
//	    if r := recover(); r != nil {
//	        var mfe *options.MissingFieldError
//	        if err, ok := r.(error); ok && errors.As(err, &mfe) {
//	            fmt.Println(mfe.Missing)
//	        }
//	    }
//	}()
type MissingFieldError struct {
	// Missing lists the absent names in the order they were required.
	Missing []string

	// Present lists the names the selection did contain, sorted.
	Present []string
}

// Error returns a message naming the absent fields.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("selection is missing required fields [%s] (present: [%s])",
		strings.Join(e.Missing, ", "), strings.Join(e.Present, ", "))
}

// RequireFields panics with a *MissingFieldError unless every name is present.
//
// This is the postcondition guard for key derivation.
func RequireFields(names []string, sel *Selection) {
	if err := CheckFields(names, sel); err != nil {
		panic(err)
	}
}

// CheckFields is the non-panicking form of RequireFields.
func CheckFields(names []string, sel *Selection) error {
	var missing []string
	for _, name := range names {
		if !sel.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingFieldError{Missing: missing, Present: sel.Names()}
}
