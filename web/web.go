// Package web embeds the default host document used when no web directory
// is configured.
package web

import "embed"

//go:embed static
var StaticFS embed.FS
