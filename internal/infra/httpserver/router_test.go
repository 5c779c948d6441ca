package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ecosense/internal/application"
	appai "github.com/bryanwahyu/ecosense/internal/application/ai"
	appfootprint "github.com/bryanwahyu/ecosense/internal/application/footprint"
	appsolar "github.com/bryanwahyu/ecosense/internal/application/solar"
	"github.com/bryanwahyu/ecosense/internal/domain/ai"
	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
	"github.com/bryanwahyu/ecosense/internal/infra/knowledge"
)

var fixed = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type failingAI struct{ err error }

func (f failingAI) Generate(context.Context, ai.Request) (string, error) { return "", f.err }

type samples struct {
	sample *footprint.Sample
	err    error
}

func (s samples) Sample(context.Context) (*footprint.Sample, error) { return s.sample, s.err }

func newTestRouter(t *testing.T, client ai.Client, store footprint.SampleStore, maxUpload int64) http.Handler {
	t.Helper()
	aiSvc := appai.NewService(client, 0, nil)
	clock := application.FixedClock(fixed)
	return NewRouter(Options{
		Footprint: &appfootprint.Service{
			AI:        aiSvc,
			Knowledge: []footprint.KnowledgeSource{knowledge.NewCatalog(knowledge.DefaultFactors())},
			Samples:   store,
			Clock:     clock,
		},
		Solar:          appsolar.NewService(aiSvc, clock, nil, 0, nil),
		Clock:          clock,
		MaxUploadBytes: maxUpload,
		MaxSimulation:  4,
	})
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "nothing here"))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func do(h http.Handler, method, path, contentType string, body *bytes.Buffer) (*httptest.ResponseRecorder, map[string]any) {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func jsonBody(s string) *bytes.Buffer { return bytes.NewBufferString(s) }

func TestHealthAndNotFound(t *testing.T) {
	h := newTestRouter(t, nil, nil, 0)

	rec, body := do(h, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, Version, body["version"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec, body = do(h, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", body["error"])
}

func TestAnalyzeUpload(t *testing.T) {
	h := newTestRouter(t, nil, nil, 1<<20)

	t.Run("missing image", func(t *testing.T) {
		buf, ct := multipartBody(t, "", "", nil)
		rec, body := do(h, http.MethodPost, "/api/analyze", ct, buf)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No image file provided", body["error"])
	})

	t.Run("wrong extension", func(t *testing.T) {
		buf, ct := multipartBody(t, "image", "notes.txt", []byte("hello"))
		rec, body := do(h, http.MethodPost, "/api/analyze", ct, buf)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid file type", body["error"])
	})

	t.Run("no ai key still reports", func(t *testing.T) {
		buf, ct := multipartBody(t, "image", "bottle.png", []byte("\x89PNG fake"))
		rec, body := do(h, http.MethodPost, "/api/analyze", ct, buf)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		for _, k := range []string{
			"layer1_input_processing", "layer2_standardization", "layer3_knowledge_retrieval",
			"layer4_footprint_estimation", "layer5_final_summary", "metadata",
		} {
			assert.Contains(t, body, k)
		}
		meta := body["metadata"].(map[string]any)
		assert.Equal(t, "bottle.png", meta["filename"])
		assert.Equal(t, "1.0.0", meta["api_version"])
		in := body["layer1_input_processing"].(map[string]any)
		assert.Equal(t, appfootprint.NoAIKeyNotice, in["notice"])
		assert.NotEqual(t, in["notice"], in["description"])
	})
}

func TestAnalyzeTooLarge(t *testing.T) {
	h := newTestRouter(t, nil, nil, 512)
	buf, ct := multipartBody(t, "image", "big.jpg", bytes.Repeat([]byte("x"), 4096))
	rec, body := do(h, http.MethodPost, "/api/analyze", ct, buf)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "File too large", body["error"])
}

func TestAnalyzeStageFailure(t *testing.T) {
	h := newTestRouter(t, failingAI{err: assert.AnError}, nil, 0)
	buf, ct := multipartBody(t, "image", "bottle.png", []byte("img"))
	rec, body := do(h, http.MethodPost, "/api/analyze", ct, buf)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Layer 1 (Input Processing)", body["stage"])
	assert.Equal(t, "Analysis failed", body["error"])
}

func TestAnalyzeQuota(t *testing.T) {
	h := newTestRouter(t, failingAI{err: ai.ErrQuotaExceeded}, nil, 0)
	buf, ct := multipartBody(t, "image", "bottle.png", []byte("img"))
	rec, body := do(h, http.MethodPost, "/api/analyze", ct, buf)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Layer 1 (Input Processing)", body["stage"])
}

func TestSampleEndpoint(t *testing.T) {
	rec, body := do(newTestRouter(t, nil, nil, 0), http.MethodPost, "/api/test", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Sample image not found", body["error"])

	store := samples{sample: &footprint.Sample{Name: "sample.png", Data: []byte("img"), MIMEType: "image/png"}}
	rec, body = do(newTestRouter(t, nil, store, 0), http.MethodPost, "/api/test", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	meta := body["metadata"].(map[string]any)
	assert.Equal(t, true, meta["test_mode"])
	assert.Equal(t, "sample.png", meta["filename"])
}

func TestSolarAnalyze(t *testing.T) {
	h := newTestRouter(t, nil, nil, 0)

	rec, body := do(h, http.MethodPost, "/api/solar/analyze", "application/json", jsonBody(`{"solar_production": 2500}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "Missing required fields")

	rec, body = do(h, http.MethodPost, "/api/solar/analyze", "application/json", jsonBody(`{"solar_production": 10, "battery_percentage": 140}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(h, http.MethodPost, "/api/solar/analyze", "application/json", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No JSON data provided", body["error"])

	rec, body = do(h, http.MethodPost, "/api/solar/analyze", "application/json",
		jsonBody(`{"solar_production": 2500, "battery_percentage": 75, "battery_capacity": 12000}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "2024-06-01T12:00:00Z", body["timestamp"])
	assert.Equal(t, true, body["simulated"])

	input := body["input"].(map[string]any)
	assert.EqualValues(t, 2500, input["solar_production_watts"])
	assert.EqualValues(t, 75, input["battery_percentage"])
	assert.EqualValues(t, 12000, input["battery_capacity_wh"])

	plan := body["management_plan"].(map[string]any)
	assert.Len(t, plan["energy_allocation_plan"], 6)
	assert.NotEmpty(t, plan["recommendation_summary"])
}

func TestSolarSimulate(t *testing.T) {
	h := newTestRouter(t, nil, nil, 0)

	rec, body := do(h, http.MethodPost, "/api/solar/simulate", "application/json",
		jsonBody(`{"appliances": {"Pump": 750}, "simulation_data": [{"solar": 3500, "battery": 75}, {"solar": 50}]}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cfg := body["configuration"].(map[string]any)
	assert.EqualValues(t, 10000, cfg["battery_capacity_wh"])
	assert.Equal(t, map[string]any{"Pump": float64(750)}, cfg["appliances"])

	results := body["simulation_results"].([]any)
	require.Len(t, results, 2)
	second := results[1].(map[string]any)
	assert.EqualValues(t, 2, second["step"])
	assert.EqualValues(t, 50, second["input"].(map[string]any)["battery_percentage"])

	rec, _ = do(h, http.MethodPost, "/api/solar/simulate", "application/json",
		jsonBody(`{"simulation_data": [{},{},{},{},{}]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(h, http.MethodPost, "/api/solar/simulate", "application/json", jsonBody(`{"simulation_data": []}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolarConfig(t *testing.T) {
	h := newTestRouter(t, nil, nil, 0)

	rec, body := do(h, http.MethodGet, "/api/solar/config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := body["configuration"].(map[string]any)
	assert.EqualValues(t, 10000, cfg["battery_capacity_wh"])
	assert.EqualValues(t, 0, cfg["energy_log_count"])

	rec, body = do(h, http.MethodPost, "/api/solar/config", "application/json",
		jsonBody(`{"battery_capacity": 5000, "appliances": {"Kettle": 2000}}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Configuration updated successfully", body["message"])

	_, body = do(h, http.MethodGet, "/api/solar/config", "", nil)
	cfg = body["configuration"].(map[string]any)
	assert.EqualValues(t, 5000, cfg["battery_capacity_wh"])
	assert.Equal(t, map[string]any{"Kettle": float64(2000)}, cfg["appliances"])

	rec, _ = do(h, http.MethodPost, "/api/solar/config", "application/json", jsonBody(`{"battery_capacity": -1}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.Contains(rec.Header().Get("Content-Type"), "application/json"))
}
