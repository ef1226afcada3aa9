package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"productstudio/internal/domain"
	"productstudio/internal/imagegen"
	"productstudio/internal/infra"
	"productstudio/internal/infra/credentials"
	"productstudio/internal/metrics"
	"productstudio/internal/middleware"
	"productstudio/internal/pricing"
	"productstudio/internal/sharing"
)

type App struct {
	Config      *infra.Config
	Logger      zerolog.Logger
	Generator   imagegen.Generator
	Uploader    sharing.Uploader
	Credentials *credentials.Resolver
	Settings    credentials.Setter
	Metrics     *metrics.Metrics
	Pricing     pricing.Pricing
}

// NewApp wires the handler dependencies. settings may be nil, in which case
// only per-request and environment keys are used.
func NewApp(cfg *infra.Config, logger zerolog.Logger, gen imagegen.Generator, up sharing.Uploader, settings credentials.Setter, m *metrics.Metrics) *App {
	if cfg == nil {
		cfg = &infra.Config{}
	}
	var source credentials.Source
	if settings != nil {
		source = settings
	}
	return &App{
		Config:      cfg,
		Logger:      logger,
		Generator:   gen,
		Uploader:    up,
		Credentials: credentials.NewResolver(source, cfg.OpenAIAPIKey),
		Settings:    settings,
		Metrics:     m,
		Pricing:     pricing.DefaultPricing,
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: errCode, Message: message}})
}

// fail renders err in the response envelope using the caller's locale.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	evt := a.Logger.Warn()
	if status >= http.StatusInternalServerError {
		evt = a.Logger.Error()
	}
	evt.Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("code", code).
		Int("status", status).
		Msg("request failed")
	a.error(w, status, code, domain.UserMessage(err, middleware.LocaleFromContext(r.Context())))
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, domain.ErrCredential):
		return http.StatusUnauthorized, "credential_missing"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrUpload):
		return http.StatusBadGateway, "upload_failed"
	case errors.Is(err, domain.ErrMissingImageData), errors.Is(err, domain.ErrDecode):
		return http.StatusBadGateway, "generation_failed"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// credential resolves the key for this request. A settings read failure is
// logged and the lower-precedence key is still used.
func (a *App) credential(r *http.Request) (string, credentials.Origin) {
	key, origin, err := a.Credentials.Resolve(r.Context(), r.Header.Get(middleware.CredentialHeader))
	if err != nil {
		a.Logger.Warn().Err(err).Msg("read stored credential")
	}
	return key, origin
}

func (a *App) timeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), d)
}
