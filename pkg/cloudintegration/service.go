// Package cloudintegration reads the provider tokens of cloud connected integrations from
// the provider token API.
package cloudintegration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.gitkraken.dev"
	DefaultTimeout = 30 * time.Second

	providerTokensPath = "v1/provider-tokens"
)

var ErrUnsupportedIntegration = errors.New("unsupported cloud integration type")

// Config locates the token API and the account token used to call it.
type Config struct {
	BaseURL   string `json:"baseUrl,omitempty" env:"BASE_URL"`
	Token     string `json:"token,omitempty" env:"TOKEN"`
	UserAgent string `json:"userAgent,omitempty" env:"USER_AGENT"`
	Timeout   string `json:"timeout,omitempty" env:"TIMEOUT"`
}

// APIError is a non-2xx answer of the token API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider token api returned %d: %s", e.Status, e.Message)
}

type Service struct {
	baseURL   *url.URL
	client    *http.Client
	logger    *zap.Logger
	telemetry Telemetry
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTelemetry(t Telemetry) Option {
	return func(s *Service) {
		s.telemetry = t
	}
}

// WithTransport replaces the transport beneath the header injection.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Service) {
		s.client.Transport = rt
	}
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	rawURL := cfg.BaseURL
	if rawURL == "" {
		rawURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimSuffix(rawURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base url '%s': %w", rawURL, err)
	}

	timeout := DefaultTimeout
	if cfg.Timeout != "" {
		timeout, err = time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timeout: %w", err)
		}
	}

	s := &Service{
		baseURL:   base,
		client:    &http.Client{Timeout: timeout},
		logger:    zap.NewNop(),
		telemetry: noopTelemetry{},
	}
	for _, opt := range opts {
		opt(s)
	}

	headers := map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	}
	if cfg.Token != "" {
		headers["Authorization"] = "Bearer " + cfg.Token
	}
	if cfg.UserAgent != "" {
		headers["User-Agent"] = cfg.UserAgent
	}
	s.client.Transport = newHeaderRoundTripper(headers, s.client.Transport)

	return s, nil
}

// Connections lists the integrations connected to the account.
func (s *Service) Connections(ctx context.Context) ([]Connection, error) {
	resp, err := s.fetch(ctx, http.MethodGet, providerTokensPath, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isOK(resp) {
		apiErr := s.readAPIError(resp, "Failed to get connected providers from cloud")
		s.sendFailure("cloudIntegrations/getConnections/failed", map[string]any{
			"code": resp.StatusCode,
		})
		return nil, apiErr
	}

	var connections []Connection
	if err := decodeData(resp.Body, &connections); err != nil {
		return nil, err
	}
	return connections, nil
}

// ConnectionSession fetches the token of integration id. With a refresh token, the token is
// refreshed instead.
func (s *Service) ConnectionSession(ctx context.Context, id IntegrationID, refreshToken string) (*Session, error) {
	cloudType, ok := CloudType(id)
	if !ok {
		s.logger.Error("Unsupported cloud integration type", zap.String("integration.id", string(id)))
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedIntegration, id)
	}

	refresh := refreshToken != ""
	method := http.MethodGet
	path := providerTokensPath + "/" + cloudType
	var body any
	if refresh {
		method = http.MethodPost
		path += "/refresh"
		body = map[string]string{"access_token": refreshToken}
	}

	resp, err := s.fetch(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isOK(resp) {
		action, event := "get", "cloudIntegrations/getConnection/failed"
		if refresh {
			action, event = "refresh", "cloudIntegrations/refreshConnection/failed"
		}
		apiErr := s.readAPIError(resp, fmt.Sprintf("Failed to %s %s token from cloud", action, id))
		s.sendFailure(event, map[string]any{
			"code":           resp.StatusCode,
			"integration.id": string(id),
		})
		return nil, apiErr
	}

	var session *Session
	if err := decodeData(resp.Body, &session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) fetch(ctx context.Context, method, path string, body any) (*http.Response, error) {
	endpoint := s.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.logger.Debug("calling provider token api",
		zap.String("method", method),
		zap.String("url", endpoint.String()))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make http request: %w", err)
	}
	return resp, nil
}

// readAPIError builds the error of a failed response. The error body is either a string or
// an object with a message; the status text is used when neither is present. Only errors
// the API reported itself are logged.
func (s *Service) readAPIError(resp *http.Response, logPrefix string) *APIError {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return apiErr
	}
	if len(envelope.Error) == 0 || string(envelope.Error) == "null" {
		return apiErr
	}

	var message string
	if err := json.Unmarshal(envelope.Error, &message); err != nil {
		var detail struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &detail); err == nil {
			message = detail.Message
		}
	}
	if message != "" {
		apiErr.Message = message
	}

	s.logger.Error(logPrefix+": "+apiErr.Message, zap.Int("status", resp.StatusCode))
	return apiErr
}

func (s *Service) sendFailure(event string, attrs map[string]any) {
	if !s.telemetry.Enabled() {
		return
	}
	s.telemetry.SendEvent(event, attrs)
}

func decodeData(r io.Reader, target any) error {
	envelope := struct {
		Data any `json:"data"`
	}{Data: target}
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func isOK(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
