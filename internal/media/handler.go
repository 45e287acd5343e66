package media

import (
	"bytes"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const maxSubtitleBytes = 8 << 20

// ViewRecorder is notified when a client starts playing the video from the
// beginning.
type ViewRecorder interface {
	RecordView(r *http.Request, name string)
}

// Handler serves the selected video and subtitle.
type Handler struct {
	source   Source
	video    string
	subtitle string
	views    ViewRecorder
}

func NewHandler(source Source, video, subtitle string) *Handler {
	return &Handler{source: source, video: video, subtitle: subtitle}
}

func (h *Handler) SetViewRecorder(views ViewRecorder) {
	h.views = views
}

func (h *Handler) Video(w http.ResponseWriter, r *http.Request) {
	if h.video == "" {
		http.Error(w, "Video not found", http.StatusNotFound)
		return
	}

	logger := log.WithFields(log.Fields{"video": h.video, "range": r.Header.Get("Range")})
	obj, err := h.source.Open(r.Context(), h.video)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WithError(err).Warn("video not found")
			http.Error(w, "Video not found", http.StatusNotFound)
			return
		}
		logger.WithError(err).Error("failed to open video")
		http.Error(w, "Cannot obtain file info", http.StatusInternalServerError)
		return
	}
	defer func() { _ = obj.Content.Close() }()

	if h.views != nil && r.Method == http.MethodGet && startsPlayback(r.Header.Get("Range")) {
		h.views.RecordView(r, h.video)
	}

	logger.WithField("size", obj.Size).Debug("streaming video")
	w.Header().Set("Content-Type", ContentType(h.video))
	http.ServeContent(w, r, path.Base(h.video), obj.ModTime, obj.Content)
}

func (h *Handler) Subtitle(w http.ResponseWriter, r *http.Request) {
	if h.subtitle == "" {
		http.Error(w, "Subtitle not found", http.StatusNotFound)
		return
	}

	logger := log.WithFields(log.Fields{"subtitle": h.subtitle, "remote_addr": r.RemoteAddr})
	obj, err := h.source.Open(r.Context(), h.subtitle)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WithError(err).Warn("subtitle not found")
			http.Error(w, "Subtitle not found", http.StatusNotFound)
			return
		}
		logger.WithError(err).Error("failed to open subtitle")
		http.Error(w, "Cannot obtain file info", http.StatusInternalServerError)
		return
	}
	defer func() { _ = obj.Content.Close() }()

	raw, err := io.ReadAll(io.LimitReader(obj.Content, maxSubtitleBytes+1))
	if err != nil {
		logger.WithError(err).Error("failed to read subtitle")
		http.Error(w, "Cannot read subtitle", http.StatusInternalServerError)
		return
	}
	if len(raw) > maxSubtitleBytes {
		logger.Error("subtitle exceeds size limit")
		http.Error(w, "Subtitle too large", http.StatusInternalServerError)
		return
	}

	vtt, err := ToWebVTT(raw, path.Ext(h.subtitle))
	if err != nil {
		logger.WithError(err).Error("failed to convert subtitle")
		http.Error(w, "Cannot convert subtitle", http.StatusInternalServerError)
		return
	}

	logger.Debug("serving subtitle")
	w.Header().Set("Content-Type", "text/vtt; charset=utf-8")
	http.ServeContent(w, r, "sub.vtt", obj.ModTime, bytes.NewReader(vtt))
}

// startsPlayback reports whether a request for the video reads it from the
// first byte to the end. Bounded probes such as bytes=0-1 and seeks are not
// counted.
func startsPlayback(rangeHeader string) bool {
	if rangeHeader == "" {
		return true
	}
	return strings.ReplaceAll(rangeHeader, " ", "") == "bytes=0-"
}
