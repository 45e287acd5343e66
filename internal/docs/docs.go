// Package docs publishes the OpenAPI description of the HTTP API together with
// a browsable reference page.
package docs

import (
	_ "embed"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	Path     = "/api/docs"
	SpecPath = Path + "/openapi.yaml"
)

//go:embed openapi.yaml
var specYAML []byte

// The reference page pulls its viewer from jsDelivr, which the default
// policy forbids.
var viewerPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self' https://cdn.jsdelivr.net 'unsafe-inline'",
	"style-src 'self' https://cdn.jsdelivr.net 'unsafe-inline'",
	"font-src 'self' https://cdn.jsdelivr.net data:",
	"img-src 'self' data:",
	"connect-src 'self'",
	"frame-ancestors 'self'",
}, "; ") + ";"

const viewerHTML = `<!DOCTYPE html>
<html><head>
  <title>subplay API</title>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
</head><body>
  <script id="api-reference" data-url="` + SpecPath + `"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body></html>`

// Register mounts the reference page and the raw description on r.
func Register(r chi.Router) {
	r.Get(Path, HandleDocs)
	r.Get(SpecPath, HandleSpec)
}

func HandleSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(specYAML)
}

func HandleDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Security-Policy", viewerPolicy)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(viewerHTML))
}
