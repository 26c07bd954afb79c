package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/phishlens/internal/history"
	"github.com/ppiankov/phishlens/internal/model"
	"github.com/ppiankov/phishlens/internal/pipeline"
)

type passResolver struct{}

func (passResolver) Resolve(_ context.Context, startURL string) (string, []string) {
	return startURL, nil
}

// hangingFetcher blocks until the analysis context ends
type hangingFetcher struct{}

func (hangingFetcher) Fetch(ctx context.Context, _ string) (*pipeline.FetchResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type cleanLists struct{}

func (cleanLists) Check(context.Context, string) model.BlacklistReport {
	return model.BlacklistReport{
		OpenPhish: model.BlacklistClean, PhishTank: model.BlacklistClean, SafeBrowsing: model.BlacklistUnknown,
	}
}

type oldDomain struct{}

func (oldDomain) AgeDays(context.Context, string) (int, bool) { return 4000, true }

type noCert struct{}

func (noCert) Inspect(context.Context, string) model.CertificateInfo { return model.CertificateInfo{} }

type noDNS struct{}

func (noDNS) Resolve(context.Context, string) model.DNSInfo { return model.DNSInfo{} }

// recordingAnalyzer reports the error of every finished analysis
type recordingAnalyzer struct {
	inner Analyzer
	errs  chan error
}

func (r *recordingAnalyzer) Analyze(ctx context.Context, input string) (*model.AnalysisResult, error) {
	result, err := r.inner.Analyze(ctx, input)
	r.errs <- err
	return result, err
}

func TestAnalyze_ClientDisconnectIsNotPersisted(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Feeds.CacheDir = ""
	p := pipeline.NewPipeline(cfg, nil,
		pipeline.WithResolver(passResolver{}),
		pipeline.WithFetcher(hangingFetcher{}),
		pipeline.WithBlacklist(cleanLists{}),
		pipeline.WithAgeLookup(oldDomain{}),
		pipeline.WithCertInspector(noCert{}),
		pipeline.WithDNSResolver(noDNS{}),
	)
	analyzer := &recordingAnalyzer{inner: p, errs: make(chan error, 1)}

	store := history.NewFileStore(filepath.Join(t.TempDir(), "history.json"))
	srv := httptest.NewServer(New(analyzer, store, 500, nil).Routes())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+"/api/analyze",
		strings.NewReader(`{"url":"paypa1.example"}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	if resp, err := http.DefaultClient.Do(req); err == nil {
		_ = resp.Body.Close()
		t.Fatal("Expected the client request to be abandoned")
	}

	select {
	case err := <-analyzer.errs:
		if !errors.Is(err, pipeline.ErrCancelled) {
			t.Errorf("Expected ErrCancelled after disconnect, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected the analysis to stop after the client left")
	}

	records, err := store.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("Expected nothing persisted, got %+v", records)
	}
}

func TestAnalyze_CancelledAnalysisStatus(t *testing.T) {
	cancelled := &fakeAnalyzer{err: fmt.Errorf("%w: %w", pipeline.ErrCancelled, context.Canceled)}
	srv, store := newTestServer(t, cancelled)

	resp := postAnalyze(t, srv.URL, `{"url":"example.com"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", resp.StatusCode)
	}

	records, _ := store.List(0)
	if len(records) != 0 {
		t.Errorf("Expected nothing persisted, got %d records", len(records))
	}
}
