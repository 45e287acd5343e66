// Package analytics keeps a log of video plays.
package analytics

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/mssola/useragent"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/subplay/subplay/internal/database"
	"github.com/subplay/subplay/internal/httputil"
)

const unknown = "unknown"

type View struct {
	Media     string
	UserAgent string
	Browser   string
	OS        string
	Device    string
	Country   string
}

// Classify extracts browser, operating system and device class from a
// User-Agent header.
func Classify(userAgent string) (browser, os, device string) {
	ua := useragent.New(userAgent)

	browser, _ = ua.Browser()
	os = ua.OSInfo().Name

	switch {
	case ua.Bot():
		device = "bot"
	case ua.Mobile():
		device = "mobile"
	default:
		device = "desktop"
	}

	if browser == "" {
		browser = unknown
	}
	if os == "" {
		os = unknown
	}
	return browser, os, device
}

type Store struct {
	db database.DBTX
}

func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, v View) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO views (media, user_agent, browser, os, device, country) VALUES ($1, $2, $3, $4, $5, $6)`,
		v.Media, v.UserAgent, v.Browser, v.OS, v.Device, v.Country,
	)
	if err != nil {
		return errors.Wrap(err, "insert view")
	}
	return nil
}

type Summary struct {
	Total     int64            `json:"total"`
	ByBrowser map[string]int64 `json:"byBrowser"`
	ByCountry map[string]int64 `json:"byCountry"`
}

func (s *Store) Summary(ctx context.Context) (Summary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT browser, country, count(*) FROM views GROUP BY browser, country`)
	if err != nil {
		return Summary{}, errors.Wrap(err, "query views")
	}
	defer rows.Close()

	summary := Summary{ByBrowser: map[string]int64{}, ByCountry: map[string]int64{}}
	for rows.Next() {
		var browser, country string
		var count int64
		if err := rows.Scan(&browser, &country, &count); err != nil {
			return Summary{}, errors.Wrap(err, "scan views")
		}
		if country == "" {
			country = unknown
		}
		summary.Total += count
		summary.ByBrowser[browser] += count
		summary.ByCountry[country] += count
	}
	if err := rows.Err(); err != nil {
		return Summary{}, errors.Wrap(err, "iterate views")
	}
	return summary, nil
}

type CountryResolver interface {
	Country(ip string) string
}

// Recorder writes views in the background so playback never waits on the
// database.
type Recorder struct {
	store      *Store
	geo        CountryResolver
	trustProxy bool
	timeout    time.Duration
	wg         sync.WaitGroup
}

func NewRecorder(store *Store, geo CountryResolver, trustProxy bool) *Recorder {
	return &Recorder{store: store, geo: geo, trustProxy: trustProxy, timeout: 5 * time.Second}
}

func (rec *Recorder) RecordView(r *http.Request, media string) {
	browser, os, device := Classify(r.UserAgent())
	view := View{
		Media:     media,
		UserAgent: r.UserAgent(),
		Browser:   browser,
		OS:        os,
		Device:    device,
	}
	if rec.geo != nil {
		view.Country = rec.geo.Country(httputil.ClientIP(r, rec.trustProxy))
	}

	rec.wg.Add(1)
	go func() {
		defer rec.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), rec.timeout)
		defer cancel()
		if err := rec.store.Insert(ctx, view); err != nil {
			log.WithError(err).WithField("media", media).Error("analytics: failed to record view")
		}
	}()
}

// Wait blocks until every pending view has been written.
func (rec *Recorder) Wait() {
	rec.wg.Wait()
}

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Views(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.Summary(r.Context())
	if err != nil {
		log.WithError(err).Error("analytics: failed to load summary")
		httputil.WriteError(w, http.StatusInternalServerError, "could not load views")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}
