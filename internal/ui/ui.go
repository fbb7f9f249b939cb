// Package ui embeds the built frontend. The dist directory is produced by
// the frontend build and checked in so the server binary is self-contained.
package ui

import "embed"

//go:embed dist
var DistFS embed.FS
