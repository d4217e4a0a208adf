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
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

const maxSyntaxIssues = 20

// SyntaxChecker parses rendered Python with tree-sitter.
//
// A broken template otherwise surfaces only as an opaque formatter failure,
// or not at all when formatting is disabled.
type SyntaxChecker struct{}

// NewSyntaxChecker creates a Python syntax checker.
func NewSyntaxChecker() *SyntaxChecker {
	return &SyntaxChecker{}
}

// Check returns a *SyntaxError listing every ERROR or MISSING node in src.
//
// # Inputs
//
//   - ctx: Cancels a long parse.
//   - stem: Used in the error message.
//   - src: Python source.
//
// # Outputs
//
//   - error: nil when src parses cleanly.
func (c *SyntaxChecker) Check(ctx context.Context, stem, src string) error {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	content := []byte(src)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return fmt.Errorf("parse %s: %w", stem, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}
	var issues []SyntaxIssue
	collectIssues(root, content, &issues, 0)
	return &SyntaxError{Stem: stem, Issues: issues}
}

func collectIssues(node *sitter.Node, content []byte, issues *[]SyntaxIssue, depth int) {
	if depth > 1000 || len(*issues) >= maxSyntaxIssues {
		return
	}

	if node.IsError() || node.IsMissing() {
		point := node.StartPoint()
		msg := "syntax error"
		if node.IsMissing() {
			msg = fmt.Sprintf("missing %s", node.Type())
		} else if start, end := node.StartByte(), min(node.EndByte(), uint32(len(content))); end > start && end-start < 60 {
			msg = fmt.Sprintf("unexpected %q", content[start:end])
		}
		*issues = append(*issues, SyntaxIssue{
			Line:    int(point.Row) + 1,
			Column:  int(point.Column),
			Message: msg,
		})
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		collectIssues(node.Child(i), content, issues, depth+1)
	}
}
