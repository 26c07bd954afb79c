package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/phishlens/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Explain produces an operator-facing narrative of a finished analysis
	Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExplainRequest contains the input for one explanation
type ExplainRequest struct {
	// Result is the scored analysis to explain
	Result model.AnalysisResult

	// AllowedURLs is the only set of URLs the model may repeat.
	// Anything else in the answer is rejected.
	AllowedURLs []string

	// Prompt overrides BuildPrompt when set
	Prompt string

	// Model overrides the configured model when set
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExplainResponse contains the model output
type ExplainResponse struct {
	Summary    string
	CitedURLs  []string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", "" (disabled)
	Provider string

	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// StrictURLs rejects answers mentioning URLs outside AllowedURLs
	StrictURLs bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:   "",
		Timeout:    10 * time.Second,
		StrictURLs: true,
		MaxTokens:  400,
	}
}

// ConfigFromModel converts the application config into a provider config.
// A disabled LLM section yields an empty provider.
func ConfigFromModel(llmCfg model.LLMConfig, httpCfg model.HTTPConfig) Config {
	cfg := DefaultConfig()
	if !llmCfg.Enabled {
		return cfg
	}
	cfg.Provider = llmCfg.Provider
	cfg.Model = llmCfg.Model
	cfg.APIKey = llmCfg.APIKey
	cfg.BaseURL = llmCfg.BaseURL
	if llmCfg.Timeout > 0 {
		cfg.Timeout = llmCfg.Timeout
	}
	cfg.HTTPProxy = httpCfg.HTTPProxy
	cfg.HTTPSProxy = httpCfg.HTTPSProxy
	return cfg
}

const systemPrompt = "You explain URL phishing-risk analyses to security operators. You only restate the supplied findings and never invent new ones."

// BuildPrompt constructs the default explanation prompt
func BuildPrompt(result model.AnalysisResult, allowedURLs []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Explain this phishing-risk analysis to an operator.

RULES:
1. Only mention URLs from this list:
%s

2. Do not speculate beyond the findings below. If a check was inconclusive, say so.
3. The verdict and score are final. Do not propose a different verdict.
4. Never advise the reader to open the URL.

Analysis:
- Input: %s
- Final URL: %s
- Domain: %s
- Risk score: %d/100
- Verdict: %s
- Registration age: %s

Signals:
`, joinURLs(allowedURLs), result.URLInput, result.FinalURL, result.Domain, result.RiskScore, result.Verdict, ageText(result.Meta.WhoisAgeDays))

	if len(result.Signals) == 0 {
		b.WriteString("- (none)\n")
	}
	for _, s := range result.Signals {
		fmt.Fprintf(&b, "- %s (+%d): %s\n", s.Name, s.Weight, s.Detail)
	}

	b.WriteString("\nAnswer in 3-5 sentences of Markdown.")
	return b.String()
}

// AllowedURLs lists every URL the analysis itself observed
func AllowedURLs(result model.AnalysisResult) []string {
	var urls []string
	seen := make(map[string]bool)
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}

	add(result.URLInput)
	add(result.FinalURL)
	for _, u := range result.Meta.RedirectChain {
		add(u)
	}
	for _, u := range result.Meta.Content.CrossDomainFormActions {
		add(u)
	}
	add(result.Meta.Content.MetaRefreshTarget)
	return urls
}

func ageText(days *int) string {
	if days == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d days", *days)
}

func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "(no URLs)"
	}
	var b strings.Builder
	for i, u := range urls {
		if i >= 20 {
			fmt.Fprintf(&b, "\n... and %d more URLs", len(urls)-20)
			break
		}
		fmt.Fprintf(&b, "\n- %s", u)
	}
	return b.String()
}
