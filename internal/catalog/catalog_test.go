package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listerFunc func(ctx context.Context) ([]string, error)

func (f listerFunc) List(ctx context.Context) ([]string, error) { return f(ctx) }

type scriptedPrompter struct {
	answers  []int
	messages []string
	options  [][]string
}

func (s *scriptedPrompter) Select(message string, options []string) (int, error) {
	s.messages = append(s.messages, message)
	s.options = append(s.options, options)
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func scan(t *testing.T, names ...string) *Catalog {
	t.Helper()
	c, err := Scan(context.Background(), listerFunc(func(context.Context) ([]string, error) { return names, nil }))
	require.NoError(t, err)
	return c
}

func TestDirLister_ListsRegularFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/video/b.mp4", []byte("b"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/video/a.srt", []byte("a"), 0o644))
	require.NoError(t, fs.MkdirAll("/video/extras", 0o755))

	names, err := NewDirLister(fs, "/video").List(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.srt", "b.mp4"}, names)
}

func TestDirLister_EnsureDirCreatesMissingDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	lister := NewDirLister(fs, "/srv/video")

	require.NoError(t, lister.EnsureDir())

	exists, err := afero.DirExists(fs, "/srv/video")
	require.NoError(t, err)
	assert.True(t, exists)

	names, err := lister.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestScan_SplitsVideosAndSubtitles(t *testing.T) {
	c := scan(t, "z.mkv", "notes.txt", "a.mp4", "a.fa.srt", "cover.jpg", "z.vtt")

	assert.Equal(t, []string{"a.mp4", "z.mkv"}, c.Videos)
	assert.Equal(t, []string{"a.fa.srt", "z.vtt"}, c.Subtitles)
}

func TestScan_PropagatesListError(t *testing.T) {
	boom := errors.New("permission denied")
	_, err := Scan(context.Background(), listerFunc(func(context.Context) ([]string, error) { return nil, boom }))
	assert.Equal(t, boom, err)
}

func TestChoose_DefaultsToFirstVideoAndMatchingSubtitle(t *testing.T) {
	c := scan(t, "a.mp4", "b.mkv", "a.srt", "b.fa.srt")

	sel, err := c.Choose(Selection{Video: "b.mkv"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Selection{Video: "b.mkv", Subtitle: "b.fa.srt"}, sel)

	sel, err = c.Choose(Selection{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Selection{Video: "a.mp4", Subtitle: "a.srt"}, sel)
}

func TestChoose_FallsBackToFirstSubtitle(t *testing.T) {
	c := scan(t, "movie.mp4", "other.vtt")

	sel, err := c.Choose(Selection{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "other.vtt", sel.Subtitle)
}

func TestChoose_NoSubtitlesAvailable(t *testing.T) {
	c := scan(t, "movie.mp4")

	sel, err := c.Choose(Selection{}, &scriptedPrompter{answers: []int{0}})
	require.NoError(t, err)

	assert.Equal(t, Selection{Video: "movie.mp4"}, sel)
}

func TestChoose_NoVideos(t *testing.T) {
	c := scan(t, "movie.srt")

	_, err := c.Choose(Selection{}, nil)

	assert.True(t, errors.Is(err, ErrNoVideos), "got %v", err)
}

func TestChoose_UnknownPreference(t *testing.T) {
	c := scan(t, "movie.mp4", "movie.srt")

	_, err := c.Choose(Selection{Video: "other.mp4"}, nil)
	assert.True(t, errors.Is(err, ErrUnknownMedia), "got %v", err)

	_, err = c.Choose(Selection{Video: "movie.mp4", Subtitle: "other.srt"}, nil)
	assert.True(t, errors.Is(err, ErrUnknownMedia), "got %v", err)
}

func TestChoose_PromptsForVideoAndSubtitle(t *testing.T) {
	c := scan(t, "a.mp4", "b.mp4", "a.srt", "b.srt")
	p := &scriptedPrompter{answers: []int{1, 0}}

	sel, err := c.Choose(Selection{}, p)
	require.NoError(t, err)

	assert.Equal(t, Selection{Video: "b.mp4", Subtitle: "a.srt"}, sel)
	assert.Equal(t, []string{"Select a video to stream:", "Select a subtitle to stream:"}, p.messages)
	assert.Equal(t, []string{"a.srt", "b.srt", NoSubtitle}, p.options[1])
}

func TestChoose_PromptAllowsNoSubtitle(t *testing.T) {
	c := scan(t, "a.mp4", "a.srt")

	sel, err := c.Choose(Selection{}, &scriptedPrompter{answers: []int{0, 1}})
	require.NoError(t, err)

	assert.Empty(t, sel.Subtitle)
}

func TestChoose_PreferenceSkipsPrompt(t *testing.T) {
	c := scan(t, "a.mp4", "a.srt")
	p := &scriptedPrompter{}

	sel, err := c.Choose(Selection{Video: "a.mp4", Subtitle: "a.srt"}, p)
	require.NoError(t, err)

	assert.Equal(t, Selection{Video: "a.mp4", Subtitle: "a.srt"}, sel)
	assert.Empty(t, p.messages)
}
