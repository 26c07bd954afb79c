package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/phishlens/internal/model"
)

// Explainer wraps a provider and turns analyses into Explanations.
// It runs after scoring and never changes the score or verdict.
type Explainer struct {
	provider Provider
	config   Config
}

// NewExplainer creates an explainer. An empty provider yields a disabled explainer.
func NewExplainer(config Config) (*Explainer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Explainer{provider: provider, config: config}, nil
}

// NewExplainerWithProvider wraps an existing provider
func NewExplainerWithProvider(provider Provider, config Config) *Explainer {
	return &Explainer{provider: provider, config: config}
}

// IsEnabled reports whether a provider is configured
func (e *Explainer) IsEnabled() bool {
	return e != nil && e.provider != nil
}

// ProviderName returns the configured provider, or "" when disabled
func (e *Explainer) ProviderName() string {
	if !e.IsEnabled() {
		return ""
	}
	return e.provider.Name()
}

// Ping checks that the provider is reachable
func (e *Explainer) Ping(ctx context.Context) error {
	if !e.IsEnabled() {
		return nil
	}
	if !e.provider.IsAvailable(ctx) {
		return fmt.Errorf("%s provider is not reachable", e.provider.Name())
	}
	return nil
}

// Explain returns a narrative for result, or nil when disabled
func (e *Explainer) Explain(ctx context.Context, result model.AnalysisResult) (*model.Explanation, error) {
	if !e.IsEnabled() {
		return nil, nil
	}

	resp, err := e.provider.Explain(ctx, ExplainRequest{
		Result:      result,
		AllowedURLs: AllowedURLs(result),
		Model:       e.config.Model,
		MaxTokens:   e.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}

	return &model.Explanation{
		Provider:  e.provider.Name(),
		Model:     resp.Model,
		SummaryMD: resp.Summary,
	}, nil
}
