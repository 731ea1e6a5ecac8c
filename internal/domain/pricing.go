package domain

// ModelPrice is USD per one million tokens.
type ModelPrice struct {
	Input  float64
	Output float64
}

// FallbackPricingModel prices any model missing from ModelPrices.
const FallbackPricingModel = "gpt-4o-mini"

// ModelPrices is the fixed price table used for cost estimates.
var ModelPrices = map[string]ModelPrice{
	"gpt-4o-mini":  {Input: 0.15, Output: 0.60},
	"gpt-4o":       {Input: 2.50, Output: 10.00},
	"gpt-4.1-mini": {Input: 0.40, Output: 1.60},
}

// EstimateCost attaches a USD estimate to token usage.
func EstimateCost(u TokenUsage) OpenAIUsage {
	price, ok := ModelPrices[u.Model]
	if !ok {
		price = ModelPrices[FallbackPricingModel]
	}
	cost := float64(u.PromptTokens)/1_000_000*price.Input + float64(u.CompletionTokens)/1_000_000*price.Output
	return OpenAIUsage{TokenUsage: u, EstimatedCostUSD: cost}
}
