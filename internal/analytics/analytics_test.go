package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	chromeWindowsUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	iPhoneUA        = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	googlebotUA     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

type staticCountry string

func (s staticCountry) Country(string) string { return string(s) }

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestClassify_DesktopBrowser(t *testing.T) {
	browser, os, device := Classify(chromeWindowsUA)

	assert.Equal(t, "Chrome", browser)
	assert.Contains(t, os, "Windows")
	assert.Equal(t, "desktop", device)
}

func TestClassify_Mobile(t *testing.T) {
	_, _, device := Classify(iPhoneUA)
	assert.Equal(t, "mobile", device)
}

func TestClassify_Bot(t *testing.T) {
	_, _, device := Classify(googlebotUA)
	assert.Equal(t, "bot", device)
}

func TestStore_Insert(t *testing.T) {
	mock := newMock(t)
	store := NewStore(mock)

	mock.ExpectExec(`INSERT INTO views`).
		WithArgs("movie.mp4", chromeWindowsUA, "Chrome", "Windows", "desktop", "IR").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.Insert(t.Context(), View{
		Media: "movie.mp4", UserAgent: chromeWindowsUA,
		Browser: "Chrome", OS: "Windows", Device: "desktop", Country: "IR",
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SummaryAggregatesGroups(t *testing.T) {
	mock := newMock(t)
	store := NewStore(mock)

	mock.ExpectQuery(`SELECT browser, country, count\(\*\) FROM views`).
		WillReturnRows(pgxmock.NewRows([]string{"browser", "country", "count"}).
			AddRow("Chrome", "IR", int64(3)).
			AddRow("Chrome", "DE", int64(1)).
			AddRow("Firefox", "", int64(2)))

	summary, err := store.Summary(t.Context())
	require.NoError(t, err)

	assert.Equal(t, int64(6), summary.Total)
	assert.Equal(t, map[string]int64{"Chrome": 4, "Firefox": 2}, summary.ByBrowser)
	assert.Equal(t, map[string]int64{"IR": 3, "DE": 1, "unknown": 2}, summary.ByCountry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_RecordsViewInBackground(t *testing.T) {
	mock := newMock(t)
	recorder := NewRecorder(NewStore(mock), staticCountry("IR"), false)

	mock.ExpectExec(`INSERT INTO views`).
		WithArgs("movie.mp4", iPhoneUA, pgxmock.AnyArg(), pgxmock.AnyArg(), "mobile", "IR").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	req := httptest.NewRequest(http.MethodGet, "/video", nil)
	req.Header.Set("User-Agent", iPhoneUA)
	recorder.RecordView(req, "movie.mp4")
	recorder.Wait()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_InsertFailureIsLoggedNotPropagated(t *testing.T) {
	mock := newMock(t)
	recorder := NewRecorder(NewStore(mock), nil, false)

	mock.ExpectExec(`INSERT INTO views`).WillReturnError(errors.New("connection reset"))

	recorder.RecordView(httptest.NewRequest(http.MethodGet, "/video", nil), "movie.mp4")
	recorder.Wait()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_ViewsReturnsSummary(t *testing.T) {
	mock := newMock(t)
	handler := NewHandler(NewStore(mock))

	mock.ExpectQuery(`SELECT browser, country, count`).
		WillReturnRows(pgxmock.NewRows([]string{"browser", "country", "count"}).
			AddRow("Safari", "IR", int64(5)))

	rec := httptest.NewRecorder()
	handler.Views(rec, httptest.NewRequest(http.MethodGet, "/api/views", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(5), body.Total)
	assert.Equal(t, int64(5), body.ByCountry["IR"])
}

func TestHandler_ViewsQueryFailure(t *testing.T) {
	mock := newMock(t)
	handler := NewHandler(NewStore(mock))

	mock.ExpectQuery(`SELECT browser, country, count`).WillReturnError(errors.New("db down"))

	rec := httptest.NewRecorder()
	handler.Views(rec, httptest.NewRequest(http.MethodGet, "/api/views", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not load views")
}
