package imagegen

import "testing"

func TestApplyStyle(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		style  string
		want   string
	}{
		{"empty style", "red sneakers on marble", "", "red sneakers on marble"},
		{"none", "red sneakers on marble", "None", "red sneakers on marble"},
		{"preset", "red sneakers on marble", "Studio HD", "red sneakers on marble, make it in a Studio HD style"},
		{"preset folded", "a mug", "photorealistic", "a mug, make it in a Photorealistic style"},
		{"free form", "a mug", " watercolor ", "a mug, make it in a watercolor style"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ApplyStyle(tc.prompt, tc.style); got != tc.want {
				t.Fatalf("ApplyStyle() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStylesReturnsCopy(t *testing.T) {
	got := Styles()
	got[0].Value = "mutated"
	if Styles()[0].Value != "none" {
		t.Fatalf("Styles leaked internal slice")
	}
}

func TestParseQuality(t *testing.T) {
	if q, err := ParseQuality(""); err != nil || q != QualityMedium {
		t.Fatalf("empty quality = %q, %v", q, err)
	}
	if q, err := ParseQuality(" HIGH "); err != nil || q != QualityHigh {
		t.Fatalf("HIGH quality = %q, %v", q, err)
	}
	if _, err := ParseQuality("ultra"); err == nil {
		t.Fatalf("expected error for unsupported quality")
	}
}
