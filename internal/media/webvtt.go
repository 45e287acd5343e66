package media

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var ErrUnsupportedSubtitle = errors.New("unsupported subtitle format")

const webVTTHeader = "WEBVTT"

var (
	utf8BOM       = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM    = []byte{0xFF, 0xFE}
	utf16BEBOM    = []byte{0xFE, 0xFF}
	srtTimestamp  = regexp.MustCompile(`(\d+):(\d{2}):(\d{2})[,.](\d{3})`)
	cueIdentifier = regexp.MustCompile(`^\d+$`)
)

// ToWebVTT converts a subtitle file to WebVTT. ext selects the input format.
// UTF-16 input must start with a byte order mark. Other input that is not
// valid UTF-8 is read as Windows-1256, the usual encoding of legacy Persian
// subtitle files.
func ToWebVTT(raw []byte, ext string) ([]byte, error) {
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	switch strings.ToLower(ext) {
	case ".vtt":
		if strings.HasPrefix(text, webVTTHeader) {
			return []byte(text), nil
		}
		return []byte(webVTTHeader + "\n\n" + strings.TrimLeft(text, "\n")), nil
	case ".srt":
		return []byte(srtToWebVTT(text)), nil
	default:
		return nil, errors.Wrap(ErrUnsupportedSubtitle, ext)
	}
}

func decodeText(raw []byte) (string, error) {
	var (
		enc  encoding.Encoding
		name string
	)
	switch {
	case bytes.HasPrefix(raw, utf8BOM):
		raw = raw[len(utf8BOM):]
	case bytes.HasPrefix(raw, utf16LEBOM):
		enc, name = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), "utf-16le"
	case bytes.HasPrefix(raw, utf16BEBOM):
		enc, name = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), "utf-16be"
	}
	if enc == nil {
		if utf8.Valid(raw) {
			return string(raw), nil
		}
		enc, name = charmap.Windows1256, "windows-1256"
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Wrapf(err, "decode %s subtitle", name)
	}
	return string(decoded), nil
}

func srtToWebVTT(text string) string {
	var b strings.Builder
	b.WriteString(webVTTHeader)
	b.WriteString("\n")

	for _, lines := range cueBlocks(text) {
		if len(lines) > 1 && cueIdentifier.MatchString(strings.TrimSpace(lines[0])) && strings.Contains(lines[1], "-->") {
			lines = lines[1:]
		}
		if strings.Contains(lines[0], "-->") {
			lines[0] = srtTimestamp.ReplaceAllStringFunc(lines[0], webVTTTimestamp)
		}

		b.WriteString("\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}

	return b.String()
}

// cueBlocks splits text into runs of non-blank lines. Lines holding only
// whitespace separate cues just like empty ones.
func cueBlocks(text string) [][]string {
	var (
		blocks  [][]string
		current []string
	)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

// webVTTTimestamp rewrites an SRT timestamp such as 0:01:02,500 to 00:01:02.500.
func webVTTTimestamp(ts string) string {
	m := srtTimestamp.FindStringSubmatch(ts)
	hours := m[1]
	if len(hours) < 2 {
		hours = "0" + hours
	}
	return hours + ":" + m[2] + ":" + m[3] + "." + m[4]
}
