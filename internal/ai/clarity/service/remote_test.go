package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
)

func TestRemoteProvider_Success(t *testing.T) {
	var got models.AnalyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reality":"R","variables":["A","B"],"nextStep":"N"}`))
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL)
	analysis, err := p.GetAnalysis(context.Background(), "take the offer", models.ContextCareer)
	require.NoError(t, err)

	assert.Equal(t, &models.Analysis{Reality: "R", Variables: []string{"A", "B"}, NextStep: "N"}, analysis)
	assert.Equal(t, models.AnalyzeRequest{Situation: "take the offer", Context: models.ContextCareer}, got)
}

func TestRemoteProvider_NonSuccessStatus(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", code)
		}))

		_, err := NewRemoteProvider(srv.URL).GetAnalysis(context.Background(), "s", models.ContextStudy)
		srv.Close()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNetwork)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, code, statusErr.Code)
	}
}

func TestRemoteProvider_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reality": 42`))
	}))
	defer srv.Close()

	_, err := NewRemoteProvider(srv.URL).GetAnalysis(context.Background(), "s", models.ContextStudy)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRemoteProvider_PassesThroughUnvalidatedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reality":"only reality"}`))
	}))
	defer srv.Close()

	analysis, err := NewRemoteProvider(srv.URL).GetAnalysis(context.Background(), "s", models.ContextStudy)
	require.NoError(t, err)
	assert.Equal(t, "only reality", analysis.Reality)
	assert.Empty(t, analysis.Variables)
}

func TestRemoteProvider_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewRemoteProvider(url).GetAnalysis(context.Background(), "s", models.ContextStudy)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestRemoteProvider_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRemoteProvider(srv.URL).GetAnalysis(ctx, "s", models.ContextStudy)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoteProvider_DefaultEndpoint(t *testing.T) {
	assert.Equal(t, DefaultEndpoint, NewRemoteProvider("").Endpoint())
	assert.Equal(t, "http://localhost:5000/analyze", DefaultEndpoint)
}

func TestRemoteProvider_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, WithTracer(tp.Tracer("test")))
	_, err := p.GetAnalysis(context.Background(), "s", models.ContextProject)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "clarifi.get_analysis", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "Project", attrs["clarifi.context"])
	assert.Equal(t, "503", attrs["http.status_code"])
}
