// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package render turns user-submitted markdown into HTML that is safe to
// embed in a page.
package render

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	md     = goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy = bluemonday.UGCPolicy()
)

// Markdown converts markdown to sanitized HTML.
// Raw HTML in the input never survives; on a conversion error the input is escaped.
func Markdown(input string) string {
	if input == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(input), &buf); err != nil {
		return template.HTMLEscapeString(input)
	}
	return policy.Sanitize(buf.String())
}
