package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/phishlens/internal/history"
	"github.com/ppiankov/phishlens/internal/model"
	"github.com/ppiankov/phishlens/internal/pipeline"
	"github.com/ppiankov/phishlens/internal/util"
)

var (
	outJSON   string
	explain   bool
	noHistory bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a single URL and print its risk report",
	Long: `Analyze runs every detector against one URL:
- Expand shorteners and follow redirects
- Check OpenPhish, PhishTank and Google Safe Browsing
- Look up domain registration age and the TLS certificate
- Inspect the landing page for credential forms and pressure wording
- Compare the domain with well-known brands

Example:
  phishlens analyze bit.ly/3abcd
  phishlens analyze https://paypa1-login.example --json report.json
  phishlens analyze https://example.com --explain`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "also write the full result as JSON to this path")
	analyzeCmd.Flags().BoolVar(&explain, "explain", false, "ask the configured LLM for a short explanation")
	analyzeCmd.Flags().BoolVar(&noHistory, "no-history", false, "do not append the result to history")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if explain {
		if err := enableLLM(cfg); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", args[0])
		fmt.Fprintf(os.Stderr, "Deadline: %v\n\n", cfg.Analysis.Deadline)
	}

	p := pipeline.NewPipeline(cfg, newLogger())
	result, err := p.Analyze(ctx, args[0])
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidURL) {
			return fmt.Errorf("invalid input: %w", err)
		}
		if errors.Is(err, pipeline.ErrCancelled) {
			return fmt.Errorf("interrupted, nothing saved: %w", err)
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	renderSummary(cmd.OutOrStdout(), result)

	if outJSON != "" {
		if err := writeResultJSON(outJSON, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outJSON)
	}

	if !noHistory {
		if err := history.NewFileStore(cfg.History.Path).Append(result); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
	}
	return nil
}

// enableLLM switches explanations on and checks the provider has credentials
func enableLLM(cfg *model.Config) error {
	cfg.LLM.Enabled = true
	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	return nil
}

func writeResultJSON(path string, result *model.AnalysisResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := util.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
