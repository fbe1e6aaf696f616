// Package web holds the embedded HTML templates and static assets.
package web

import "embed"

// TemplatesFS holds the page and partial templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds css and scripts, served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
