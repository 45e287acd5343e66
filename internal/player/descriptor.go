package player

import "github.com/subplay/subplay/internal/languages"

const (
	SurfaceWidth  = 800
	SurfaceHeight = 450

	SubtitleKind = "subtitles"
	// SubtitleLanguage is fixed: the player ships a single Persian track.
	SubtitleLanguage = "fa"
)

type Surface struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Controls bool   `json:"controls"`
	Source   string `json:"source"`
}

type Track struct {
	Kind      string `json:"kind"`
	Source    string `json:"source"`
	Language  string `json:"language"`
	Label     string `json:"label"`
	IsDefault bool   `json:"default"`
}

// Descriptor is the configuration handed to a Renderer. It is rebuilt on
// every render and never mutated afterwards.
type Descriptor struct {
	Surface Surface `json:"surface"`
	Tracks  []Track `json:"tracks"`
}

func NewDescriptor(urls OriginURLs) Descriptor {
	return Descriptor{
		Surface: Surface{
			Width:    SurfaceWidth,
			Height:   SurfaceHeight,
			Controls: true,
			Source:   urls.MediaURL,
		},
		Tracks: []Track{
			{
				Kind:      SubtitleKind,
				Source:    urls.SubtitleURL,
				Language:  SubtitleLanguage,
				Label:     languages.Label(SubtitleLanguage),
				IsDefault: true,
			},
		},
	}
}
