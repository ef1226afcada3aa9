package credentials

import (
	"context"
	"errors"
	"testing"
)

type failingSource struct{}

func (failingSource) OpenAIAPIKey(ctx context.Context) (string, error) {
	return "", errors.New("db down")
}

func TestResolverPrecedence(t *testing.T) {
	saved := NewMemoryStore()
	_ = saved.SetOpenAIAPIKey(context.Background(), "sk-saved")

	tests := []struct {
		name       string
		source     Source
		env        string
		explicit   string
		wantKey    string
		wantOrigin Origin
		wantErr    bool
	}{
		{name: "explicit wins", source: saved, env: "sk-env", explicit: " sk-req ", wantKey: "sk-req", wantOrigin: OriginRequest},
		{name: "saved over env", source: saved, env: "sk-env", wantKey: "sk-saved", wantOrigin: OriginSettings},
		{name: "env fallback", source: NewMemoryStore(), env: "sk-env", wantKey: "sk-env", wantOrigin: OriginEnv},
		{name: "nothing", source: NewMemoryStore(), wantKey: "", wantOrigin: OriginNone},
		{name: "nil source", env: "sk-env", wantKey: "sk-env", wantOrigin: OriginEnv},
		{name: "store failure falls back", source: failingSource{}, env: "sk-env", wantKey: "sk-env", wantOrigin: OriginEnv, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key, origin, err := NewResolver(tc.source, tc.env).Resolve(context.Background(), tc.explicit)
			if key != tc.wantKey || origin != tc.wantOrigin {
				t.Fatalf("Resolve() = %q, %q; want %q, %q", key, origin, tc.wantKey, tc.wantOrigin)
			}
			if (err != nil) != tc.wantErr {
				t.Fatalf("Resolve() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestMask(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"sk-proj-1234abcd": "****abcd",
		"abc":             "****abc",
	}
	for in, want := range cases {
		if got := Mask(in); got != want {
			t.Fatalf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
