package telemetry

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	recorder := NewRecorderAPI()
	tel := NewScopedAPI("gradescope_scraper", recorder)

	tel.ReportBroken("client.list-members", fmt.Errorf("fetch: boom"))
	tel.ReportWarning("client.list-courses")
	tel.ReportCount("client.list-assignments", 3)
	tel.ReportDebug("login")

	require.Equal(t, []string{"gradescope_scraper.client.list-members"}, recorder.Ids(REPORT_BROKEN))
	require.Equal(t, []string{"gradescope_scraper.client.list-courses"}, recorder.Ids(REPORT_WARNING))
	require.Equal(t, []string{"gradescope_scraper: login"}, recorder.Ids(REPORT_DEBUG))

	counts := recorder.Reports(REPORT_COUNT)
	require.Len(t, counts, 1)
	require.Equal(t, int64(3), counts[0].Count)
}

func TestInstrumentResty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))
	defer srv.Close()

	recorder := NewRecorderAPI()
	client := resty.New().SetBaseURL(srv.URL)
	InstrumentResty(client, "test", recorder)

	res, err := client.R().Get("/pot")
	require.NoError(t, err)
	require.Equal(t, http.StatusTeapot, res.StatusCode())

	require.Equal(
		t,
		[]string{report_resty_request, report_resty_response},
		recorder.Ids(REPORT_DEBUG),
	)
	require.Empty(t, recorder.Ids(REPORT_BROKEN))

	dump := FormatResponse(res)
	require.True(t, strings.HasPrefix(dump, "---- REQUEST ----"))
	require.Contains(t, dump, "GET "+srv.URL+"/pot")
	require.Contains(t, dump, "short and stout")
}

func TestInstrumentRestyTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	recorder := NewRecorderAPI()
	client := resty.New().SetBaseURL(url)
	InstrumentResty(client, "test", recorder)

	_, err := client.R().Get("/")
	require.Error(t, err)
	require.Equal(t, []string{report_resty_response}, recorder.Ids(REPORT_BROKEN))
}

func TestDumpResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("page " + r.URL.Path))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0o600))

	recorder := NewRecorderAPI()
	client := resty.New().SetBaseURL(srv.URL)
	require.NoError(t, DumpResponses(client, dir, recorder))

	_, err := client.R().Get("/first")
	require.NoError(t, err)
	_, err = client.R().Get("/second")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Equal(t, []string{"0001.txt", "0002.txt"}, names)

	second, err := os.ReadFile(filepath.Join(dir, "0002.txt"))
	require.NoError(t, err)
	require.Contains(t, string(second), "page /second")
	require.Empty(t, recorder.Ids(REPORT_WARNING))
}
