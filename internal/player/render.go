package player

import (
	"encoding/json"
	"html/template"
	"io"

	"github.com/pkg/errors"
)

// Renderer turns a Descriptor into something a client can display.
type Renderer interface {
	Render(w io.Writer, d Descriptor) error
}

var playerViewTemplate = template.Must(template.New("player").Parse(`<div class="App">
    <h1>{{.Title}}</h1>
    <video id="player" class="player"{{if .Surface.Controls}} controls{{end}} width="{{.Surface.Width}}" height="{{.Surface.Height}}" preload="metadata">
        <source src="{{.Surface.Source}}">
        {{- range .Tracks}}
        <track kind="{{.Kind}}" src="{{.Source}}" srclang="{{.Language}}" label="{{.Label}}"{{if .IsDefault}} default{{end}}>
        {{- end}}
        Your browser does not support video playback.
    </video>
</div>`))

type playerViewData struct {
	Title string
	Descriptor
}

// HTMLRenderer renders the descriptor as a native video element.
type HTMLRenderer struct {
	Title string
}

func NewHTMLRenderer(title string) *HTMLRenderer {
	return &HTMLRenderer{Title: title}
}

func (h *HTMLRenderer) Render(w io.Writer, d Descriptor) error {
	if err := playerViewTemplate.Execute(w, playerViewData{Title: h.Title, Descriptor: d}); err != nil {
		return errors.Wrap(err, "execute player template")
	}
	return nil
}

// JSONRenderer renders the descriptor for clients that bring their own player.
type JSONRenderer struct{}

func (JSONRenderer) Render(w io.Writer, d Descriptor) error {
	if err := json.NewEncoder(w).Encode(d); err != nil {
		return errors.Wrap(err, "encode descriptor")
	}
	return nil
}
