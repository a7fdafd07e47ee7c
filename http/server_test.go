package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/serp"
	"github.com/fwojciec/serp/fs"
	serphttp "github.com/fwojciec/serp/http"
	"github.com/fwojciec/serp/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun(query string) *serp.Run {
	run := serp.NewRun(query, time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC))
	rec := serp.NewPageRecord("https://a.example", &serp.Elements{
		Title:           "Alpha <Guide>",
		MetaDescription: "All about alpha",
		Headings:        serp.NewHeadings(),
	})
	rec.Add(serp.H1, "Alpha")
	rec.Add(serp.H2, "First")
	rec.Add(serp.H2, "Second")
	run.Append(rec)
	return run
}

// testServer starts s behind httptest and returns a client that does not
// follow redirects.
func testServer(t *testing.T, s *serphttp.Server) (*httptest.Server, *http.Client) {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	client := ts.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return ts, client
}

func get(t *testing.T, client *http.Client, u string) (int, string) {
	t.Helper()
	resp, err := client.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Index(t *testing.T) {
	t.Parallel()

	s := serphttp.NewServer()
	s.Defaults = serp.Params{Count: 7, Delay: 3 * time.Second}
	ts, client := testServer(t, s)

	status, body := get(t, client, ts.URL+"/")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `name="query"`)
	assert.Contains(t, body, `value="7"`)
	assert.Contains(t, body, `value="3.0"`)
	assert.NotContains(t, body, `http-equiv="refresh"`)
}

func TestServer_Analyze(t *testing.T) {
	t.Parallel()

	t.Run("runs job, exports, saves and renders results", func(t *testing.T) {
		t.Parallel()

		var gotParams serp.Params
		analyzer := &mock.Analyzer{
			AnalyzeFn: func(ctx context.Context, params serp.Params, found func([]string), progress serp.ProgressFunc) (*serp.Run, error) {
				gotParams = params
				found([]string{"https://a.example", "https://b.example"})
				progress(serp.Progress{Index: 1, Total: 2, URL: "https://a.example"})
				progress(serp.Progress{Index: 2, Total: 2, URL: "https://b.example", Err: errors.New("HTTP 503")})
				return sampleRun(params.Query), nil
			},
		}
		var saved *serp.Run
		runs := &mock.RunService{
			CreateRunFn: func(ctx context.Context, run *serp.Run) error {
				saved = run
				return nil
			},
		}
		exporter := fs.NewExporter(t.TempDir(), serp.JSONFormat{})

		s := serphttp.NewServer()
		s.Analyzer = analyzer
		s.Exporter = exporter
		s.Artifacts = exporter
		s.Runs = runs
		ts, client := testServer(t, s)

		resp, err := client.PostForm(ts.URL+"/analyze", url.Values{
			"query": {"alpha guide"},
			"count": {"2"},
			"delay": {"1.5"},
		})
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		location := resp.Header.Get("Location")
		require.True(t, strings.HasPrefix(location, "/jobs/"))

		s.Wait()

		assert.Equal(t, serp.Params{Query: "alpha guide", Count: 2, Delay: 1500 * time.Millisecond}, gotParams)
		require.NotNil(t, saved)
		assert.Equal(t, "alpha guide", saved.Query)

		status, body := get(t, client, ts.URL+location)
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "Found URLs (2)")
		assert.Contains(t, body, "https://b.example: HTTP 503")
		assert.Contains(t, body, "Pages analyzed<b>1</b>")
		assert.Contains(t, body, "Average H2<b>2.0</b>")
		assert.Contains(t, body, "Alpha &lt;Guide&gt;")
		assert.Contains(t, body, "/download/alpha_guide_20250203_040506.json")
		assert.NotContains(t, body, `http-equiv="refresh"`)

		status, body = get(t, client, ts.URL+"/download/alpha_guide_20250203_040506.json")
		assert.Equal(t, http.StatusOK, status)
		var records []map[string]any
		require.NoError(t, json.Unmarshal([]byte(body), &records))
		assert.Len(t, records, 1)
	})

	t.Run("shows empty result message", func(t *testing.T) {
		t.Parallel()

		s := serphttp.NewServer()
		s.Analyzer = &mock.Analyzer{
			AnalyzeFn: func(ctx context.Context, params serp.Params, found func([]string), progress serp.ProgressFunc) (*serp.Run, error) {
				found(nil)
				return nil, serp.Errorf(serp.EEMPTY, "No URLs found. Please try a different query.")
			},
		}
		s.Exporter = &mock.Exporter{
			ExportFn: func(ctx context.Context, run *serp.Run) ([]serp.Artifact, error) {
				t.Error("export must not be called for an empty run")
				return nil, nil
			},
		}
		ts, client := testServer(t, s)

		resp, err := client.PostForm(ts.URL+"/analyze", url.Values{"query": {"nothing"}})
		require.NoError(t, err)
		resp.Body.Close()
		s.Wait()

		_, body := get(t, client, ts.URL+resp.Header.Get("Location"))
		assert.Contains(t, body, "No URLs found. Please try a different query.")
	})

	t.Run("recovers from a panicking job", func(t *testing.T) {
		t.Parallel()

		s := serphttp.NewServer()
		s.Analyzer = &mock.Analyzer{
			AnalyzeFn: func(ctx context.Context, params serp.Params, found func([]string), progress serp.ProgressFunc) (*serp.Run, error) {
				panic("boom")
			},
		}
		ts, client := testServer(t, s)

		resp, err := client.PostForm(ts.URL+"/analyze", url.Values{"query": {"x"}})
		require.NoError(t, err)
		resp.Body.Close()
		s.Wait()

		_, body := get(t, client, ts.URL+resp.Header.Get("Location"))
		assert.Contains(t, body, "An unexpected error occurred. Please try again.")
		assert.NotContains(t, body, "boom")
	})

	t.Run("re-renders form for invalid input", func(t *testing.T) {
		t.Parallel()

		s := serphttp.NewServer()
		ts, client := testServer(t, s)

		resp, err := client.PostForm(ts.URL+"/analyze", url.Values{"query": {"x"}, "count": {"50"}})
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), "result count must be between 1 and 20")
	})
}

func TestServer_Job(t *testing.T) {
	t.Parallel()

	t.Run("refreshes while running", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		started := make(chan struct{})
		s := serphttp.NewServer()
		s.Analyzer = &mock.Analyzer{
			AnalyzeFn: func(ctx context.Context, params serp.Params, found func([]string), progress serp.ProgressFunc) (*serp.Run, error) {
				found([]string{"https://a.example", "https://b.example"})
				progress(serp.Progress{Index: 1, Total: 2, URL: "https://a.example"})
				close(started)
				<-release
				return nil, serp.Errorf(serp.EEMPTY, "No results could be analyzed. Please try again.")
			},
		}
		ts, client := testServer(t, s)

		resp, err := client.PostForm(ts.URL+"/analyze", url.Values{"query": {"x"}})
		require.NoError(t, err)
		resp.Body.Close()
		<-started

		_, body := get(t, client, ts.URL+resp.Header.Get("Location"))
		close(release)
		s.Wait()

		assert.Contains(t, body, `http-equiv="refresh"`)
		assert.Contains(t, body, "Analyzing 1 of 2")
		assert.Contains(t, body, `value="50"`)
	})

	t.Run("returns 404 for unknown job", func(t *testing.T) {
		t.Parallel()

		ts, client := testServer(t, serphttp.NewServer())

		status, _ := get(t, client, ts.URL+"/jobs/missing")
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestServer_Download(t *testing.T) {
	t.Parallel()

	t.Run("returns 404 for missing file", func(t *testing.T) {
		t.Parallel()

		s := serphttp.NewServer()
		s.Artifacts = fs.NewExporter(t.TempDir())
		ts, client := testServer(t, s)

		status, _ := get(t, client, ts.URL+"/download/missing.json")
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	s := serphttp.NewServer()
	s.Addr = "127.0.0.1:0"
	require.NoError(t, s.Open())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	status, _ := get(t, http.DefaultClient, s.URL()+"/")
	assert.Equal(t, http.StatusOK, status)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestErrorStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, serphttp.ErrorStatusCode(serp.EINVALID))
	assert.Equal(t, http.StatusNotFound, serphttp.ErrorStatusCode(serp.ENOTFOUND))
	assert.Equal(t, http.StatusInternalServerError, serphttp.ErrorStatusCode("unknown"))
}
