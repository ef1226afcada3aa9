package pricing

import "fmt"

// InputTokenBreakdown splits input tokens by origin.
type InputTokenBreakdown struct {
	TextTokens  int64 `json:"text_tokens,omitempty"`
	ImageTokens int64 `json:"image_tokens,omitempty"`
}

// UsageRecord is the token accounting returned with a generation result.
// Counts are expected to be non-negative; nothing here validates that.
type UsageRecord struct {
	TotalTokens        int64                `json:"total_tokens"`
	InputTokens        int64                `json:"input_tokens"`
	OutputTokens       int64                `json:"output_tokens"`
	InputTokensDetails *InputTokenBreakdown `json:"input_tokens_details,omitempty"`
}

// Pricing holds USD rates per million tokens.
type Pricing struct {
	TextInputPerMillion  float64
	ImageInputPerMillion float64
	OutputPerMillion     float64
}

// DefaultPricing is the gpt-image-1 rate card.
var DefaultPricing = Pricing{
	TextInputPerMillion:  5.00,
	ImageInputPerMillion: 10.00,
	OutputPerMillion:     40.00,
}

// Estimate is a cost amount together with the token counts it was priced on.
type Estimate struct {
	USD          float64 `json:"usd"`
	TextTokens   int64   `json:"text_tokens"`
	ImageTokens  int64   `json:"image_tokens"`
	OutputTokens int64   `json:"output_tokens"`
}

// EstimateCost prices usage with DefaultPricing.
func EstimateCost(usage UsageRecord) float64 {
	return DefaultPricing.Estimate(usage)
}

// Estimate returns the USD cost of usage.
func (p Pricing) Estimate(usage UsageRecord) float64 {
	return p.Breakdown(usage).USD
}

// Breakdown resolves which tokens are billed at which rate.
//
// Without an explicit text count, input_tokens is billed as text only when no
// image tokens were reported; otherwise the text share is treated as zero.
func (p Pricing) Breakdown(usage UsageRecord) Estimate {
	var textTokens, imageTokens int64
	if d := usage.InputTokensDetails; d != nil {
		textTokens = d.TextTokens
		imageTokens = d.ImageTokens
	}
	billedText := textTokens
	if billedText <= 0 {
		billedText = 0
		if imageTokens == 0 {
			billedText = usage.InputTokens
		}
	}

	cost := float64(billedText) / 1_000_000 * p.TextInputPerMillion
	cost += float64(imageTokens) / 1_000_000 * p.ImageInputPerMillion
	cost += float64(usage.OutputTokens) / 1_000_000 * p.OutputPerMillion

	return Estimate{
		USD:          cost,
		TextTokens:   billedText,
		ImageTokens:  imageTokens,
		OutputTokens: usage.OutputTokens,
	}
}

// FormatUSD renders cost the way the dashboard displays it.
func FormatUSD(cost float64) string {
	return fmt.Sprintf("$%.3f", cost)
}
