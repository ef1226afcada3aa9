package imagegen

import (
	"fmt"
	"strings"
)

// Style is a preset offered next to the prompt on the edit form.
type Style struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var styles = []Style{
	{Value: "none", Label: "None"},
	{Value: "Photorealistic", Label: "Realistic"},
	{Value: "Animated", Label: "Animated"},
	{Value: "Studio HD", Label: "Studio HD"},
}

// Styles returns the presets in display order.
func Styles() []Style {
	out := make([]Style, len(styles))
	copy(out, styles)
	return out
}

// ApplyStyle appends the style instruction to prompt. An empty style or
// "none" leaves the prompt unchanged. Known presets are matched
// case-insensitively and rendered with their canonical spelling.
func ApplyStyle(prompt, style string) string {
	style = strings.TrimSpace(style)
	if style == "" || strings.EqualFold(style, "none") {
		return prompt
	}
	for _, s := range styles {
		if strings.EqualFold(s.Value, style) {
			style = s.Value
			break
		}
	}
	return fmt.Sprintf("%s, make it in a %s style", prompt, style)
}
