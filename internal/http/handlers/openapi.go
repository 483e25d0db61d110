package handlers

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
)

// OpenAPIPath is where the API description is served. The docs page loads it
// from this path.
const OpenAPIPath = "/v1/openapi.json"

//go:embed openapi.json
var openAPIDocument []byte

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>{{.Title}}</title>
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <style>
      body { margin: 0; padding: 0; }
      redoc { display: block; height: 100vh; }
    </style>
  </head>
  <body>
    <redoc spec-url="{{.SpecURL}}"></redoc>
    <script src="https://cdn.jsdelivr.net/npm/redoc@2.2.0/bundles/redoc.standalone.js"></script>
  </body>
</html>
`))

type docsData struct {
	Title   string
	SpecURL string
}

// OpenAPIJSON serves the embedded OpenAPI 3 description of the counts and
// health endpoints. The document only changes between builds.
func (a *App) OpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDocument)
}

// OpenAPIDocs renders a Redoc page for the document at OpenAPIPath.
func (a *App) OpenAPIDocs(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := docsPage.Execute(&buf, docsData{Title: "Bike Count API", SpecURL: OpenAPIPath}); err != nil {
		a.logger.Error().Err(err).Msg("render api docs")
		a.error(w, http.StatusInternalServerError, "Failed to render docs")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
