package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
)

const DefaultEndpoint = "http://localhost:5000/analyze"

var (
	// ErrNetwork - любая неудача удаленного запроса. Причина доступна через
	// errors.Unwrap, но пользователю не показывается.
	ErrNetwork = errors.New("analysis request failed")

	ErrMalformedResponse = errors.New("malformed analysis response")
)

// StatusError - ответ сервиса с кодом вне диапазона 2xx
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// RemoteProvider запрашивает анализ у внешнего HTTP сервиса
type RemoteProvider struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
	tracer   trace.Tracer
}

type RemoteOption func(*RemoteProvider)

func WithHTTPClient(client *http.Client) RemoteOption {
	return func(p *RemoteProvider) {
		p.client = client
	}
}

func WithLogger(logger *zap.Logger) RemoteOption {
	return func(p *RemoteProvider) {
		p.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) RemoteOption {
	return func(p *RemoteProvider) {
		p.tracer = tracer
	}
}

func NewRemoteProvider(endpoint string, opts ...RemoteOption) *RemoteProvider {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	p := &RemoteProvider{
		endpoint: endpoint,
		client:   &http.Client{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracer == nil {
		p.tracer = getTracer()
	}
	return p
}

func (p *RemoteProvider) Endpoint() string {
	return p.endpoint
}

// GetAnalysis отправляет ситуацию на сервис и возвращает ответ как есть.
// Повторов нет, таймаут определяется транспортом и ctx.
func (p *RemoteProvider) GetAnalysis(ctx context.Context, situation string, c models.Context) (*models.Analysis, error) {
	ctx, span := p.tracer.Start(ctx, "clarifi.get_analysis",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("clarifi.context", c.String()),
			attribute.String("http.url", p.endpoint),
		))
	defer span.End()

	analysis, err := p.send(ctx, situation, c, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Error("analysis request failed",
			zap.String("endpoint", p.endpoint),
			zap.String("context", c.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return analysis, nil
}

func (p *RemoteProvider) send(ctx context.Context, situation string, c models.Context, span trace.Span) (*models.Analysis, error) {
	jsonData, err := json.Marshal(models.AnalyzeRequest{
		Situation: situation,
		Context:   c,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var analysis models.Analysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return &analysis, nil
}
