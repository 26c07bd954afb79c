package score

import (
	"testing"

	"github.com/ppiankov/phishlens/internal/model"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func names(signals []model.Signal) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = s.Name
	}
	return out
}

func TestTotal_CapsAt100(t *testing.T) {
	signals := []model.Signal{
		{Name: model.SignalListedOpenPhish, Weight: 35},
		{Name: model.SignalListedPhishTank, Weight: 35},
		{Name: model.SignalListedSafeBrowsing, Weight: 30},
		{Name: model.SignalCertHostMismatch, Weight: 18},
	}

	score, verdict := Aggregate(signals)
	if score != 100 {
		t.Errorf("Expected capped score 100, got %d", score)
	}
	if verdict != model.VerdictMalicious {
		t.Errorf("Expected MALICIOUS, got %s", verdict)
	}
}

func TestTotal_Empty(t *testing.T) {
	score, verdict := Aggregate(nil)
	if score != 0 || verdict != model.VerdictProbablySafe {
		t.Errorf("Expected 0/PROBABLY_SAFE, got %d/%s", score, verdict)
	}
}

func TestVerdictFor_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  model.Verdict
	}{
		{0, model.VerdictProbablySafe},
		{34, model.VerdictProbablySafe},
		{35, model.VerdictSuspicious},
		{64, model.VerdictSuspicious},
		{65, model.VerdictMalicious},
		{100, model.VerdictMalicious},
	}

	for _, tt := range tests {
		if got := VerdictFor(tt.score); got != tt.want {
			t.Errorf("VerdictFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestScorer_Signals_Order(t *testing.T) {
	obs := Observations{
		StartDomain:   "bit.ly",
		FinalURL:      "http://a.b.c.d.paypa1-secure.tk/x@y",
		FinalDomain:   "paypa1-secure.tk",
		RedirectChain: []string{"http://a.b.c.d.paypa1-secure.tk/x@y"},
		Blacklists: model.BlacklistReport{
			OpenPhish:    model.BlacklistListed,
			PhishTank:    model.BlacklistListed,
			SafeBrowsing: model.BlacklistListed,
		},
		WhoisAgeDays: intPtr(3),
		PageFetched:  true,
		Content: model.ContentMeta{
			FormCount:              1,
			LoginLike:              true,
			SensitiveForm:          true,
			KeywordsFound:          []string{"senha"},
			CrossDomainFormActions: []string{"https://evil.example/post"},
			Tricks:                 []string{"right_click_blocked", "timer_scheduling"},
			MetaRefreshTarget:      "https://evil.example/",
		},
		Brands: []model.BrandMatch{
			{Brand: "paypal", Similarity: 83, KnownDomains: []string{"paypal.com"}},
			{Brand: "other", Similarity: 80},
		},
	}

	got := names(NewScorer().Signals(obs))
	want := []string{
		model.SignalShortenerExpanded,
		model.SignalExcessiveSubdomains,
		model.SignalSuspiciousChars,
		model.SignalLeetSimilarity,
		model.SignalListedOpenPhish,
		model.SignalListedPhishTank,
		model.SignalListedSafeBrowsing,
		model.SignalDomainVeryNew,
		model.SignalNoHTTPS,
		model.SignalMetaRefresh,
		model.SignalSensitiveForm,
		model.SignalLoginForm,
		model.SignalPressureKeywords,
		model.SignalCrossDomainForm,
		model.SignalAntiInspection,
		model.SignalAntiInspection,
		model.SignalTyposquatting,
	}

	if len(got) != len(want) {
		t.Fatalf("Expected %d signals, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("signal[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScorer_AgeSignals(t *testing.T) {
	tests := []struct {
		name string
		age  *int
		want string
	}{
		{"unavailable", nil, model.SignalWhoisUnavailable},
		{"29 days", intPtr(29), model.SignalDomainVeryNew},
		{"30 days", intPtr(30), model.SignalDomainYoung},
		{"179 days", intPtr(179), model.SignalDomainYoung},
		{"180 days", intPtr(180), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := ageSignals(tt.age)
			if tt.want == "" {
				if len(signals) != 0 {
					t.Errorf("Expected no signal, got %v", signals)
				}
				return
			}
			if len(signals) != 1 || signals[0].Name != tt.want {
				t.Errorf("Expected %s, got %v", tt.want, signals)
			}
		})
	}
}

func TestScorer_CertificateSignals(t *testing.T) {
	tests := []struct {
		name     string
		cert     model.CertificateInfo
		finalURL string
		want     []string
		weight   int
	}{
		{
			name:     "absent over https",
			cert:     model.CertificateInfo{},
			finalURL: "HTTPS://example.com/",
			want:     []string{model.SignalCertUnreadable},
			weight:   2,
		},
		{
			name:     "absent over http",
			cert:     model.CertificateInfo{},
			finalURL: "http://example.com/",
			want:     []string{model.SignalNoHTTPS},
			weight:   8,
		},
		{
			name:     "mismatch and expired",
			cert:     model.CertificateInfo{Present: true, HostnameMatches: boolPtr(false), DaysToExpire: intPtr(-1)},
			finalURL: "https://example.com/",
			want:     []string{model.SignalCertHostMismatch, model.SignalCertExpired},
			weight:   33,
		},
		{
			name:     "near expiry",
			cert:     model.CertificateInfo{Present: true, HostnameMatches: boolPtr(true), DaysToExpire: intPtr(13)},
			finalURL: "https://example.com/",
			want:     []string{model.SignalCertNearExpiry},
			weight:   4,
		},
		{
			name:     "healthy",
			cert:     model.CertificateInfo{Present: true, HostnameMatches: boolPtr(true), DaysToExpire: intPtr(14)},
			finalURL: "https://example.com/",
			want:     nil,
			weight:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := certificateSignals(tt.cert, tt.finalURL)
			got := names(signals)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("signal[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
			if total := Total(signals); total != tt.weight {
				t.Errorf("Expected weight %d, got %d", tt.weight, total)
			}
		})
	}
}

func TestScorer_PageFetchFailureSuppressesContent(t *testing.T) {
	obs := Observations{
		FinalURL:     "https://example.com/",
		FinalDomain:  "example.com",
		WhoisAgeDays: intPtr(5000),
		Certificate:  model.CertificateInfo{Present: true, HostnameMatches: boolPtr(true), DaysToExpire: intPtr(90)},
		PageFetched:  false,
		PageError:    "connection refused",
		Content:      model.ContentMeta{SensitiveForm: true, FormCount: 1, LoginLike: true},
	}

	signals := NewScorer().Signals(obs)
	if len(signals) != 1 || signals[0].Name != model.SignalPageFetchFailed || signals[0].Weight != 5 {
		t.Errorf("Expected only page_fetch_failed, got %v", signals)
	}
}

func TestScorer_LoginRequiresForm(t *testing.T) {
	signals := contentSignals(model.ContentMeta{LoginLike: true, FormCount: 0})
	if len(signals) != 0 {
		t.Errorf("Expected no login signal without forms, got %v", signals)
	}
}

func TestScorer_KeywordDetailIsCapped(t *testing.T) {
	meta := model.ContentMeta{KeywordsFound: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}}
	signals := contentSignals(meta)
	if len(signals) != 1 {
		t.Fatalf("Expected 1 signal, got %v", signals)
	}
	if signals[0].Detail != "a, b, c, d, e, f, g, h" {
		t.Errorf("Unexpected detail: %q", signals[0].Detail)
	}
}

func TestScorer_ShortenerNeedsExpansion(t *testing.T) {
	obs := Observations{
		StartDomain:  "bit.ly",
		FinalURL:     "https://bit.ly/abc",
		FinalDomain:  "bit.ly",
		PageFetched:  true,
		Certificate:  model.CertificateInfo{Present: true, HostnameMatches: boolPtr(true), DaysToExpire: intPtr(90)},
		WhoisAgeDays: intPtr(5000),
	}

	for _, s := range NewScorer().Signals(obs) {
		if s.Name == model.SignalShortenerExpanded {
			t.Error("Expected no shortener signal without redirects")
		}
	}
}
