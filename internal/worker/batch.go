package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/phishlens/internal/model"
)

// Analyzer runs one URL analysis
type Analyzer interface {
	Analyze(ctx context.Context, input string) (*model.AnalysisResult, error)
}

// AnalyzeJob analyzes one URL after clearing the rate limiter
type AnalyzeJob struct {
	URL      string
	Analyzer Analyzer
	Limiter  *Limiter
}

// Execute runs the analysis
func (j *AnalyzeJob) Execute(ctx context.Context) *BatchResult {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.URL); err != nil {
			return &BatchResult{URL: j.URL, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}

	result, err := j.Analyzer.Analyze(ctx, j.URL)
	if err != nil {
		return &BatchResult{URL: j.URL, Error: err}
	}
	return &BatchResult{URL: j.URL, Result: result}
}

// BatchResult is the outcome of one URL in a batch
type BatchResult struct {
	URL    string
	Result *model.AnalysisResult
	Error  error
}

// BatchProcessor analyzes many URLs concurrently
type BatchProcessor struct {
	analyzer Analyzer
	pool     *Pool[*BatchResult]
	limiter  *Limiter
}

// NewBatchProcessor creates a processor with concurrency workers and a
// per-domain limit of requestsPerSecond (<= 0 disables limiting).
func NewBatchProcessor(analyzer Analyzer, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	return &BatchProcessor{
		analyzer: analyzer,
		pool:     NewPool[*BatchResult](concurrency),
		limiter:  NewLimiter(requestsPerSecond, burst),
	}
}

// ProcessURLs analyzes urls and returns results in input order
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*BatchResult {
	jobs := make([]Job[*BatchResult], len(urls))
	for i, u := range urls {
		jobs[i] = &AnalyzeJob{URL: u, Analyzer: b.analyzer, Limiter: b.limiter}
	}
	return b.pool.Run(ctx, jobs)
}

// ProcessFile reads URLs from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*BatchResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}
	return b.ProcessURLs(ctx, urls), nil
}

// Summary counts batch outcomes per verdict
type Summary struct {
	Total        int
	Failed       int
	ProbablySafe int
	Suspicious   int
	Malicious    int
}

// Summarize tallies results
func Summarize(results []*BatchResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Error != nil || r.Result == nil {
			s.Failed++
			continue
		}
		switch r.Result.Verdict {
		case model.VerdictMalicious:
			s.Malicious++
		case model.VerdictSuspicious:
			s.Suspicious++
		default:
			s.ProbablySafe++
		}
	}
	return s
}

// ReadURLsFromFile reads URLs from a file (one per line)
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
