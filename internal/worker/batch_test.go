package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/phishlens/internal/model"
)

// mockAnalyzer implements Analyzer
type mockAnalyzer struct {
	shouldError bool
}

func (m *mockAnalyzer) Analyze(ctx context.Context, input string) (*model.AnalysisResult, error) {
	time.Sleep(5 * time.Millisecond)
	if m.shouldError {
		return nil, errors.New("analysis error")
	}
	verdict := model.VerdictProbablySafe
	switch {
	case strings.Contains(input, "phish"):
		verdict = model.VerdictMalicious
	case strings.Contains(input, "odd"):
		verdict = model.VerdictSuspicious
	}
	return &model.AnalysisResult{URLInput: input, Verdict: verdict}, nil
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessURLs(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 2, 0, 0)

	urls := []string{"http://example.com", "http://phish.example.net", "http://odd.example.org"}
	results := processor.ProcessURLs(context.Background(), urls)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.URL, res.Error)
		}
		if res.URL != urls[i] || res.Result == nil || res.Result.URLInput != urls[i] {
			t.Errorf("result %d out of order or missing: %+v", i, res)
		}
	}

	summary := Summarize(results)
	want := Summary{Total: 3, ProbablySafe: 1, Suspicious: 1, Malicious: 1}
	if summary != want {
		t.Errorf("Summarize() = %+v, want %+v", summary, want)
	}
}

func TestBatchProcessor_ProcessURLs_Error(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{shouldError: true}, 2, 0, 0)

	results := processor.ProcessURLs(context.Background(), []string{"http://example.com"})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Result != nil {
		t.Error("expected nil result on error")
	}
	if s := Summarize(results); s.Failed != 1 || s.Total != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
}

func TestBatchProcessor_RateLimitHonoursContext(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 4, 0.1, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	results := processor.ProcessURLs(ctx, []string{"http://a.example.com", "http://b.example.com"})

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected exactly one URL throttled past the deadline, got %d", failed)
	}
}

func TestBatchProcessor_ProcessURLs_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 2, 0, 0)

	results := processor.ProcessURLs(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadURLsFromFile(t *testing.T) {
	path := writeTemp(t, "http://example.com\n# comment\nhttps://google.com\n   \nhttp://bing.com   \nhttp://example.com\n")

	urls, err := ReadURLsFromFile(path)
	if err != nil {
		t.Fatalf("ReadURLsFromFile failed: %v", err)
	}

	expected := []string{"http://example.com", "https://google.com", "http://bing.com"}
	if len(urls) != len(expected) {
		t.Fatalf("expected %d URLs, got %d", len(expected), len(urls))
	}
	for i, url := range urls {
		if url != expected[i] {
			t.Errorf("expected URL %s at index %d, got %s", expected[i], i, url)
		}
	}
}

func TestReadURLsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadURLsFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeTemp(t, "http://example.com\nhttps://google.com\n# comment\n\nhttp://bing.com\n")

	results, err := NewBatchProcessor(&mockAnalyzer{}, 2, 0, 0).ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	_, err := NewBatchProcessor(&mockAnalyzer{}, 2, 0, 0).ProcessFile(context.Background(), "no_such_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
