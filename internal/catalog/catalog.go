// Package catalog finds the playable media in a library and picks the video
// and subtitle pair to serve.
package catalog

import (
	"context"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/subplay/subplay/internal/media"
)

var (
	ErrNoVideos     = errors.New("no playable video in media library")
	ErrUnknownMedia = errors.New("media is not in the library")
)

// NoSubtitle is the option offered by the prompt for playing without a track.
const NoSubtitle = "(no subtitle)"

type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// DirLister lists the regular files directly inside a directory.
type DirLister struct {
	fs  afero.Fs
	dir string
}

func NewDirLister(fs afero.Fs, dir string) *DirLister {
	return &DirLister{fs: fs, dir: dir}
}

// EnsureDir creates the library directory when it does not exist yet.
func (d *DirLister) EnsureDir() error {
	if err := d.fs.MkdirAll(d.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create media directory %s", d.dir)
	}
	return nil
}

func (d *DirLister) List(_ context.Context) ([]string, error) {
	entries, err := afero.ReadDir(d.fs, d.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read media directory %s", d.dir)
	}
	files := lo.Filter(entries, func(e fs.FileInfo, _ int) bool { return e.Mode().IsRegular() })
	return lo.Map(files, func(e fs.FileInfo, _ int) string { return e.Name() }), nil
}

type Catalog struct {
	Videos    []string `json:"videos"`
	Subtitles []string `json:"subtitles"`
}

func Scan(ctx context.Context, l Lister) (*Catalog, error) {
	names, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	return &Catalog{
		Videos:    lo.Filter(names, func(n string, _ int) bool { return media.IsVideo(n) }),
		Subtitles: lo.Filter(names, func(n string, _ int) bool { return media.IsSubtitle(n) }),
	}, nil
}

type Selection struct {
	Video    string
	Subtitle string
}

// Prompter asks the operator to pick one of options and returns its index.
type Prompter interface {
	Select(message string, options []string) (int, error)
}

// Choose resolves the media to serve. Explicit preferences win, then the
// prompter when one is given, then the first video with the subtitle that
// best matches it.
func (c *Catalog) Choose(pref Selection, p Prompter) (Selection, error) {
	var sel Selection

	switch {
	case pref.Video != "":
		if !lo.Contains(c.Videos, pref.Video) {
			return Selection{}, errors.Wrapf(ErrUnknownMedia, "video %q", pref.Video)
		}
		sel.Video = pref.Video
	case len(c.Videos) == 0:
		return Selection{}, ErrNoVideos
	case p != nil:
		i, err := p.Select("Select a video to stream:", c.Videos)
		if err != nil {
			return Selection{}, errors.Wrap(err, "select video")
		}
		sel.Video = c.Videos[i]
	default:
		sel.Video = c.Videos[0]
	}

	switch {
	case pref.Subtitle != "":
		if !lo.Contains(c.Subtitles, pref.Subtitle) {
			return Selection{}, errors.Wrapf(ErrUnknownMedia, "subtitle %q", pref.Subtitle)
		}
		sel.Subtitle = pref.Subtitle
	case len(c.Subtitles) == 0:
	case p != nil:
		options := append(append([]string{}, c.Subtitles...), NoSubtitle)
		i, err := p.Select("Select a subtitle to stream:", options)
		if err != nil {
			return Selection{}, errors.Wrap(err, "select subtitle")
		}
		if i < len(c.Subtitles) {
			sel.Subtitle = c.Subtitles[i]
		}
	default:
		sel.Subtitle = c.matchSubtitle(sel.Video)
	}

	return sel, nil
}

// matchSubtitle prefers a subtitle sharing the video's base name, such as
// movie.fa.srt for movie.mkv, and falls back to the first subtitle.
func (c *Catalog) matchSubtitle(video string) string {
	base := strings.TrimSuffix(video, path.Ext(video))
	match, ok := lo.Find(c.Subtitles, func(s string) bool {
		return strings.HasPrefix(s, base+".")
	})
	if ok {
		return match
	}
	return lo.FirstOr(c.Subtitles, "")
}
