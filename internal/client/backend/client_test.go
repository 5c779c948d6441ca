package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.Write([]byte("anything"))
	}))
	defer srv.Close()
	assert.Equal(t, Connected, New(srv.URL).Ping(t.Context()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	assert.Equal(t, Disconnected, New(down.URL).Ping(t.Context()))

	addr := down.URL
	down.Close()
	assert.Equal(t, Disconnected, New(addr).Ping(t.Context()))
}

func TestAnalyzeImageSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analyze", r.URL.Path)
		f, h, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "cup.jpg", h.Filename)
		assert.Equal(t, "jpegdata", string(data))
		w.Write([]byte(`{"layer5_final_summary":"ok"}`))
	}))
	defer srv.Close()

	raw, err := New(srv.URL).AnalyzeImage(t.Context(), ImageInput{Filename: "cup.jpg", Data: []byte("jpegdata")})
	require.NoError(t, err)
	assert.Equal(t, "ok", raw["layer5_final_summary"])
}

func TestAnalyzeSampleAndSolar(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/api/solar/analyze" {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"solar_production":2500,"battery_percentage":75,"appliances":{"Fan":60}}`, string(body))
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	_, err := c.AnalyzeImage(t.Context(), ImageInput{Sample: true})
	require.NoError(t, err)
	_, err = c.AnalyzeSolar(t.Context(), SolarInput{SolarProductionW: 2500, BatteryPercentage: 75, Appliances: map[string]float64{"Fan": 60}})
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/test", "/api/solar/analyze"}, paths)
}

func TestStatusErrorMessage(t *testing.T) {
	cases := []struct {
		name string
		code int
		body string
		want string
	}{
		{"message wins", 500, `{"error":"Analysis failed","message":"bad image"}`, "bad image"},
		{"error only", 400, `{"success":false,"error":"Missing required fields"}`, "Missing required fields"},
		{"no body", 502, ``, "Bad Gateway"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).AnalyzeSample(t.Context())
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.code, se.Code)
			assert.Equal(t, tc.want, se.Message)
			assert.NotErrorIs(t, err, ErrUnreachable)
		})
	}
}

func TestUndecodableSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	raw, err := New(srv.URL).AnalyzeSample(t.Context())
	require.NoError(t, err)
	assert.Empty(t, raw)
	assert.NotNil(t, raw)
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New(addr).AnalyzeSample(t.Context())
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestCancelledIsNotUnreachable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	_, err := New(srv.URL).AnalyzeSample(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), err)
	assert.NotErrorIs(t, err, ErrUnreachable)
}

func TestWithTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, WithTimeout(50*time.Millisecond)).AnalyzeSample(t.Context())
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestWithTimeoutSurvivesCustomHTTPClient(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	hc := &http.Client{}
	for _, c := range []*Client{
		New(srv.URL, WithTimeout(50*time.Millisecond), WithHTTPClient(hc)),
		New(srv.URL, WithHTTPClient(hc), WithTimeout(50*time.Millisecond)),
	} {
		assert.Equal(t, 50*time.Millisecond, c.http.Timeout)
		_, err := c.AnalyzeSample(t.Context())
		assert.ErrorIs(t, err, ErrUnreachable)
	}
	assert.Zero(t, hc.Timeout, "caller's client is not mutated")
}
