package charts

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Artifacts holds every rendering of one chart build.
type Artifacts struct {
	Spec    *ChartSpec
	PNG     []byte
	Page    []byte
	JSON    []byte
	Snippet ChartSnippet
}

// ChartGenerator builds a spec and renders it to each output format.
type ChartGenerator struct {
	options Options
	size    Size
}

// NewChartGenerator creates a generator for the given builder options
func NewChartGenerator(options Options, size Size) *ChartGenerator {
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultPNGSize
	}
	return &ChartGenerator{options: options, size: size}
}

// Options returns the builder options in use
func (cg *ChartGenerator) Options() Options {
	return cg.options
}

// Build only produces the ChartSpec.
func (cg *ChartGenerator) Build(in Input) (*ChartSpec, error) {
	return BuildChartConfig(in, cg.options)
}

// Generate builds the ChartSpec and renders the PNG, the standalone page, the JSON
// description and the embeddable snippet.
func (cg *ChartGenerator) Generate(in Input) (*Artifacts, error) {
	spec, err := cg.Build(in)
	if err != nil {
		return nil, err
	}

	var png bytes.Buffer
	if err := RenderPNG(spec, &png, cg.size); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	if err := RenderEChartsPage(spec, &page); err != nil {
		return nil, err
	}

	specJSON, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chart spec: %w", err)
	}

	snippet, err := EChartsSnippet(spec, "ox-forecast-chart")
	if err != nil {
		return nil, err
	}

	return &Artifacts{
		Spec:    spec,
		PNG:     png.Bytes(),
		Page:    page.Bytes(),
		JSON:    specJSON,
		Snippet: snippet,
	}, nil
}
