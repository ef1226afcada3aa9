package credentials

import (
	"context"
	"strings"
)

// Origin names where a resolved key came from.
type Origin string

const (
	OriginNone     Origin = "none"
	OriginRequest  Origin = "request"
	OriginSettings Origin = "settings"
	OriginEnv      Origin = "environment"
)

// Resolver picks the key for one call: an explicit per-request key, then
// the saved setting, then the process environment.
type Resolver struct {
	source   Source
	fallback string
}

func NewResolver(source Source, envFallback string) *Resolver {
	return &Resolver{source: source, fallback: strings.TrimSpace(envFallback)}
}

// Resolve returns the key and its origin. A store failure is returned
// alongside whatever lower-precedence key is still available.
func (r *Resolver) Resolve(ctx context.Context, explicit string) (string, Origin, error) {
	if key := strings.TrimSpace(explicit); key != "" {
		return key, OriginRequest, nil
	}
	var storeErr error
	if r != nil && r.source != nil {
		key, err := r.source.OpenAIAPIKey(ctx)
		if err != nil {
			storeErr = err
		} else if key = strings.TrimSpace(key); key != "" {
			return key, OriginSettings, nil
		}
	}
	if r != nil && r.fallback != "" {
		return r.fallback, OriginEnv, storeErr
	}
	return "", OriginNone, storeErr
}

// Mask renders a key the way the settings page confirms it.
func Mask(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return "****" + lastFour(key)
}

func lastFour(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}
