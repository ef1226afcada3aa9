package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"productstudio/internal/domain"
	"productstudio/internal/infra/credentials"
	"productstudio/internal/middleware"
)

type credentialStatus struct {
	Configured bool               `json:"configured"`
	Masked     string             `json:"masked,omitempty"`
	Source     credentials.Origin `json:"source"`
}

type credentialUpdate struct {
	APIKey string `json:"api_key"`
}

// CredentialStatus reports which key generation would use, masked.
func (a *App) CredentialStatus(w http.ResponseWriter, r *http.Request) {
	key, origin := a.credential(r)
	a.json(w, http.StatusOK, credentialStatus{
		Configured: key != "",
		Masked:     credentials.Mask(key),
		Source:     origin,
	})
}

// CredentialUpdate saves the OpenAI key used when a request does not carry one.
func (a *App) CredentialUpdate(w http.ResponseWriter, r *http.Request) {
	if a.Settings == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "credential settings are not configured")
		return
	}
	var body credentialUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&body); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	key := strings.TrimSpace(body.APIKey)
	if key == "" {
		a.fail(w, r, domain.Invalid("api_key", "api_key is required"))
		return
	}
	if err := a.Settings.SetOpenAIAPIKey(r.Context(), key); err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("masked", credentials.Mask(key)).
		Msg("openai key updated")
	a.json(w, http.StatusOK, credentialStatus{Configured: true, Masked: credentials.Mask(key), Source: credentials.OriginSettings})
}
