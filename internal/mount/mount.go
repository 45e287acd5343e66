// Package mount attaches a rendered view to the anchor element of a host
// document.
package mount

import (
	"bytes"
	"html"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const DefaultAnchor = "root"

const (
	viewMarker  = "<!--subplay:mount-->"
	nonceMarker = "subplay-nonce-placeholder"
)

var (
	ErrAnchorMissing   = errors.New("mount anchor not found")
	ErrAnchorAmbiguous = errors.New("mount anchor is not unique")
)

// Mount is a host document split around its anchor element. It is built once
// at startup and is safe for concurrent use.
type Mount struct {
	anchor string
	head   string
	tail   string
}

// Bootstrap parses shell and locates the single element whose id is anchorID.
// Inline scripts and styles are tagged so Render can stamp a CSP nonce on them.
func Bootstrap(shell io.Reader, anchorID string) (*Mount, error) {
	if anchorID == "" {
		anchorID = DefaultAnchor
	}

	doc, err := goquery.NewDocumentFromReader(shell)
	if err != nil {
		return nil, errors.Wrap(err, "parse host document")
	}

	anchor := doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		return id == anchorID
	})
	switch anchor.Length() {
	case 0:
		return nil, errors.Wrapf(ErrAnchorMissing, "#%s", anchorID)
	case 1:
	default:
		return nil, errors.Wrapf(ErrAnchorAmbiguous, "#%s matches %d elements", anchorID, anchor.Length())
	}

	doc.Find("script:not([src]), style").SetAttr("nonce", nonceMarker)
	anchor.SetHtml(viewMarker)

	rendered, err := doc.Html()
	if err != nil {
		return nil, errors.Wrap(err, "serialize host document")
	}
	if strings.Count(rendered, viewMarker) != 1 {
		return nil, errors.New("host document already contains the mount marker")
	}

	head, tail, _ := strings.Cut(rendered, viewMarker)
	return &Mount{anchor: anchorID, head: head, tail: tail}, nil
}

func (m *Mount) Anchor() string {
	return m.anchor
}

// Render writes the host document with the output of view inside the anchor.
// The view is rendered before anything is written, so a failing view leaves
// w untouched.
func (m *Mount) Render(w io.Writer, nonce string, view func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := view(&buf); err != nil {
		return errors.Wrap(err, "render view")
	}

	stamp := strings.NewReplacer(nonceMarker, html.EscapeString(nonce))
	if _, err := stamp.WriteString(w, m.head); err != nil {
		return errors.Wrap(err, "write document head")
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "write view")
	}
	if _, err := stamp.WriteString(w, m.tail); err != nil {
		return errors.Wrap(err, "write document tail")
	}
	return nil
}
