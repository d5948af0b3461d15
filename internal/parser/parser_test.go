package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		headline string
		analysis string
		tier     Tier
	}{
		{
			name:     "fenced json",
			raw:      "```json\n{\"headline\":\"X\",\"analysis\":\"Y\"}\n```",
			headline: "X",
			analysis: "Y",
			tier:     TierStructured,
		},
		{
			name:     "bare json",
			raw:      `{"headline": "Chips rally", "analysis": "Demand is up.\nSupply is not."}`,
			headline: "Chips rally",
			analysis: "Demand is up.\nSupply is not.",
			tier:     TierStructured,
		},
		{
			name:     "fence without language tag",
			raw:      "```\n{\"headline\":\"A\",\"analysis\":\"B\"}\n```",
			headline: "A",
			analysis: "B",
			tier:     TierStructured,
		},
		{
			name:     "json values are not trimmed",
			raw:      `{"headline":"  spaced  ","analysis":"kept "}`,
			headline: "  spaced  ",
			analysis: "kept ",
			tier:     TierStructured,
		},
		{
			name:     "fences inside json values are kept",
			raw:      "```json\n{\"headline\":\"X\",\"analysis\":\"run ```go fmt``` daily\"}\n```",
			headline: "X",
			analysis: "run ```go fmt``` daily",
			tier:     TierStructured,
		},
		{
			name:     "unfenced json with a fence in a value",
			raw:      `{"headline":"X","analysis":"run ` + "```go fmt```" + ` daily"}`,
			headline: "X",
			analysis: "run ```go fmt``` daily",
			tier:     TierStructured,
		},
		{
			name:     "json with empty analysis falls back",
			raw:      `{"headline":"Only headline","analysis":""}`,
			headline: DefaultHeadline,
			analysis: `{"headline":"Only headline","analysis":""}`,
			tier:     TierFallback,
		},
		{
			name:     "labelled lines",
			raw:      "Headline: Markets steady\nAnalysis:\nStocks held gains.\nBonds were flat.",
			headline: "Markets steady",
			analysis: "Stocks held gains.\nBonds were flat.",
			tier:     TierFallback,
		},
		{
			name:     "labels are case insensitive and markdown is stripped",
			raw:      "**HEADLINE:** Rain returns\n**ANALYSIS:** Wet week ahead.\nUmbrellas advised.",
			headline: "Rain returns",
			analysis: "Umbrellas advised.",
			tier:     TierFallback,
		},
		{
			name:     "only the first headline label is removed",
			raw:      "Headline: Why the headline matters\nAnalysis:\nBody.",
			headline: "Why the headline matters",
			analysis: "Body.",
			tier:     TierFallback,
		},
		{
			name:     "text on the analysis label line is not analysis",
			raw:      "Headline: H\nAnalysis: First line.\nSecond line.",
			headline: "H",
			analysis: "Second line.",
			tier:     TierFallback,
		},
		{
			name:     "headline without analysis keeps full text",
			raw:      "Headline: Quiet day\nNothing else happened.",
			headline: "Quiet day",
			analysis: "Headline: Quiet day\nNothing else happened.",
			tier:     TierFallback,
		},
		{
			name:     "plain text",
			raw:      "The model just rambled about the news.",
			headline: DefaultHeadline,
			analysis: "The model just rambled about the news.",
			tier:     TierFallback,
		},
		{
			name:     "empty input",
			raw:      "",
			headline: DefaultHeadline,
			analysis: "",
			tier:     TierFallback,
		},
		{
			name:     "broken json",
			raw:      "```json\n{\"headline\": \"Cut off",
			headline: DefaultHeadline,
			analysis: "```json\n{\"headline\": \"Cut off",
			tier:     TierFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.headline, got.Headline)
			assert.Equal(t, tt.analysis, got.Analysis)
			assert.Equal(t, tt.tier, got.Tier)
		})
	}
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "structured", TierStructured.String())
	assert.Equal(t, "fallback", TierFallback.String())
}
