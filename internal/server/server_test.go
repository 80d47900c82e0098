package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oxforecast/internal/config"
	"oxforecast/internal/fetchers"
	"oxforecast/internal/models"
	"oxforecast/internal/reports"
	"oxforecast/internal/storage"
)

var fixedNow = time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

type fakeSource struct {
	err error
}

func (f *fakeSource) FetchAll(ctx context.Context, req fetchers.Request) (*models.ChartData, error) {
	if f.err != nil {
		return nil, f.err
	}
	forecast := make([]float64, 24)
	probs := make([]float64, 24)
	for i := range forecast {
		forecast[i] = 50 + float64(i*2)
		probs[i] = float64(i * 3)
	}
	data := &models.ChartData{
		Region:   req.Region,
		Now:      req.Now,
		Forecast: &models.ForecastResponse{OX: models.SeriesOf(forecast...), Probabilities: probs},
	}
	if req.Observations {
		data.Observation = &models.ObservationResponse{OXObs: models.SeriesOf(forecast...)}
	}
	return data, nil
}

func (f *fakeSource) FetchProbabilityTable(ctx context.Context) (models.ProbabilityTable, error) {
	if f.err != nil {
		return nil, f.err
	}
	return models.ProbabilityTable{{120, 1, 35}, {120, 2, 52}}, nil
}

func testConfig(apiBase string) *config.Config {
	return &config.Config{
		Port:         "8080",
		APIBaseURL:   apiBase,
		Region:       "kanagawa",
		DisplayTZ:    "UTC",
		ThresholdPPB: 120,
		ChartVariant: "simple",
	}
}

func newTestServer(t *testing.T, source reports.DataSource, store storage.Client) (*Server, http.Handler) {
	t.Helper()
	s, err := New(testConfig("http://127.0.0.1:1"), source, nil, store)
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	return s, s.Handler()
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t, &fakeSource{}, nil)

	rec := do(h, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "2024-07-01T09:30:00Z", body["timestamp"])

	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPost, "/health").Code)
}

func TestRootAndRequestID(t *testing.T) {
	_, h := newTestServer(t, &fakeSource{}, nil)

	rec := do(h, http.MethodGet, "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/chart", rec.Header().Get("Location"))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/nope").Code)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestChartPage(t *testing.T) {
	_, h := newTestServer(t, &fakeSource{}, nil)

	rec := do(h, http.MethodGet, "/chart")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "echarts.init")
	assert.Contains(t, rec.Body.String(), "07月01日 09時時点")

	rec = do(h, http.MethodGet, "/chart/echarts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echarts")
}

func TestChartPageUnavailable(t *testing.T) {
	_, h := newTestServer(t, &fakeSource{err: fetchers.ErrServiceUnavailable}, nil)

	rec := do(h, http.MethodGet, "/chart")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), reports.UnavailableNotice)

	rec = do(h, http.MethodGet, "/chart.png")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestChartUpstreamFailure(t *testing.T) {
	_, h := newTestServer(t, &fakeSource{err: &fetchers.RequestError{StatusCode: 500, URL: "x"}}, nil)
	assert.Equal(t, http.StatusBadGateway, do(h, http.MethodGet, "/chart.json").Code)
}

func TestChartPNG(t *testing.T) {
	_, h := newTestServer(t, &fakeSource{}, nil)

	rec := do(h, http.MethodGet, "/chart.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestChartJSONVariants(t *testing.T) {
	_, h := newTestServer(t, &fakeSource{}, nil)

	for variant, slots := range map[string]int{"": 24, "simple": 24, "rich": 25, "RICH": 25} {
		rec := do(h, http.MethodGet, "/chart.json?variant="+variant)
		require.Equal(t, http.StatusOK, rec.Code, variant)

		var spec struct {
			Labels []string `json:"labels"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
		assert.Len(t, spec.Labels, slots, variant)
	}

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/chart.json?variant=fancy").Code)
}

func TestProbabilityTable(t *testing.T) {
	_, h := newTestServer(t, &fakeSource{}, nil)

	rec := do(h, http.MethodGet, "/ptable")
	require.Equal(t, http.StatusOK, rec.Code)
	var all struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Equal(t, 2, all.Count)

	rec = do(h, http.MethodGet, "/ptable?a=120&b=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var match struct {
		Index int       `json:"index"`
		Row   []float64 `json:"row"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &match))
	assert.Equal(t, 1, match.Index)
	assert.Equal(t, []float64{120, 2, 52}, match.Row)

	rec = do(h, http.MethodGet, "/ptable?a=1&b=1")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &match))
	assert.Equal(t, -1, match.Index)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/ptable?a=x&b=1").Code)
}

func TestAPIProxy(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ox":[1]}`)
	}))
	defer upstream.Close()

	s, err := New(testConfig(upstream.URL), &fakeSource{}, nil, nil)
	require.NoError(t, err)

	rec := do(s.Handler(), http.MethodGet, "/api/ox/v0a/kanagawa")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/ox/v0a/kanagawa", gotPath)
	assert.JSONEq(t, `{"ox":[1]}`, rec.Body.String())
}

func TestAPIProxyUpstreamDown(t *testing.T) {
	_, h := newTestServer(t, &fakeSource{}, nil)
	assert.Equal(t, http.StatusBadGateway, do(h, http.MethodGet, "/api/ox").Code)
}

func TestGenerateAndServeRuns(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorageClient(dir)
	require.NoError(t, err)
	s, h := newTestServer(t, &fakeSource{}, store)
	defer s.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/generate").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/runs/latest").Code)

	rec := do(h, http.MethodPost, "/generate")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var gen struct {
		Folder string   `json:"folder"`
		Files  []string `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gen))
	assert.Equal(t, "2024/07/01/OXChart-2024-07-01-09-30-00", gen.Folder)
	assert.Len(t, gen.Files, 5)
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(gen.Folder), reports.IndexFile))
	assert.NoError(t, err)

	rec = do(h, http.MethodGet, "/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs struct {
		Runs []string `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Equal(t, []string{gen.Folder}, runs.Runs)

	rec = do(h, http.MethodGet, "/runs/latest")
	require.Equal(t, http.StatusFound, rec.Code)
	latest := rec.Header().Get("Location")
	assert.Equal(t, "/files/"+gen.Folder+"/"+reports.IndexFile, latest)
	rec = do(h, http.MethodGet, latest)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = do(h, http.MethodGet, "/files/"+gen.Folder+"/"+reports.PNGFile)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/files/missing.png").Code)

	rec = httptest.NewRecorder()
	s.HandleFileProxy(rec, httptest.NewRequest(http.MethodGet, "/files/../secret", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateWithoutStorage(t *testing.T) {
	_, h := newTestServer(t, &fakeSource{}, nil)
	assert.Equal(t, http.StatusNotImplemented, do(h, http.MethodPost, "/generate").Code)
	assert.Equal(t, http.StatusNotImplemented, do(h, http.MethodGet, "/runs").Code)
	assert.Equal(t, http.StatusNotImplemented, do(h, http.MethodGet, "/runs/latest").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t, &fakeSource{}, nil)
	do(h, http.MethodGet, "/health")

	rec := do(h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `oxforecast_http_requests_total{code="200",method="GET",path="/health"}`)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/chart.png", routeLabel("/chart.png"))
	assert.Equal(t, "/api", routeLabel("/api/ox/v0a/kanagawa"))
	assert.Equal(t, "/files", routeLabel("/files/2024/07/01/x.png"))
	assert.Equal(t, "other", routeLabel("/wp-admin"))
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(nil, &fakeSource{}, nil, nil)
	assert.Error(t, err)

	cfg := testConfig("")
	cfg.ChartVariant = "fancy"
	_, err = New(cfg, &fakeSource{}, nil, nil)
	assert.Error(t, err)
}
