package whois

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/phishlens/internal/cache"
)

func TestCreationDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{
			name: "verisign style",
			raw:  "   Domain Name: EXAMPLE.COM\r\n   Registry Domain ID: 2336799_DOMAIN_COM-VRSN\r\n   Creation Date: 1995-08-14T04:00:00Z\r\n",
			want: time.Date(1995, 8, 14, 4, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "registro.br style",
			raw:  "domain:      exemplo.com.br\nowner:       Exemplo Ltda\ncreated:     20050101 #12345\nchanged:     20240101\n",
			want: time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "registered on",
			raw:  "Domain name:\n    example.co.uk\n\nRegistered On: 02-Jan-2019\n",
			want: time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "first unparsable variant falls through",
			raw:  "Creation Date: unknown\nCreated On: 2021/06/30 10:00:00\n",
			want: time.Date(2021, 6, 30, 10, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "privacy protected",
			raw:  "Domain Name: HIDDEN.TK\nRegistrar: REDACTED FOR PRIVACY\n",
			ok:   false,
		},
		{
			name: "empty",
			raw:  "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CreationDate(tt.raw)
			if ok != tt.ok {
				t.Fatalf("CreationDate ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("CreationDate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAgeDays(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	if got := AgeDays(now.Add(-10*24*time.Hour-time.Hour), now); got != 10 {
		t.Errorf("Expected 10 days, got %d", got)
	}
	if got := AgeDays(now.Add(-23*time.Hour), now); got != 0 {
		t.Errorf("Expected 0 whole days, got %d", got)
	}
	if got := AgeDays(now.Add(48*time.Hour), now); got != 0 {
		t.Errorf("Expected future dates to clamp to 0, got %d", got)
	}
}

func TestLookup_AgeDaysAndCache(t *testing.T) {
	var queries atomic.Int32
	query := func(ctx context.Context, domain string) (string, error) {
		queries.Add(1)
		if domain != "paypa1-secure.tk" {
			t.Errorf("Expected lowercased domain, got %s", domain)
		}
		return "Domain Name: PAYPA1-SECURE.TK\nCreation Date: 2026-10-08T00:00:00Z\n", nil
	}

	l := NewLookupWithQuery(query, cache.NewTTLCache[time.Time](), time.Hour, nil)
	l.now = func() time.Time { return time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC) }

	for i := 0; i < 3; i++ {
		age, ok := l.AgeDays(context.Background(), "PAYPA1-SECURE.TK")
		if !ok || age != 10 {
			t.Fatalf("Expected 10 days, got %d (ok=%v)", age, ok)
		}
	}

	if queries.Load() != 1 {
		t.Errorf("Expected a single query thanks to caching, got %d", queries.Load())
	}
}

func TestLookup_FailuresAreAbsentAndNotCached(t *testing.T) {
	var queries atomic.Int32
	query := func(ctx context.Context, domain string) (string, error) {
		queries.Add(1)
		return "", errors.New("connection refused")
	}

	l := NewLookupWithQuery(query, cache.NewTTLCache[time.Time](), time.Hour, nil)

	for i := 0; i < 2; i++ {
		if _, ok := l.AgeDays(context.Background(), "example.com"); ok {
			t.Fatal("Expected age to be unavailable")
		}
	}
	if queries.Load() != 2 {
		t.Errorf("Expected failures to be retried, got %d queries", queries.Load())
	}
}

func TestLookup_NoCreationDate(t *testing.T) {
	query := func(ctx context.Context, domain string) (string, error) {
		return "No match for domain", nil
	}
	l := NewLookupWithQuery(query, cache.NewTTLCache[time.Time](), time.Hour, nil)

	if _, err := l.CreatedAt(context.Background(), "nothing.example"); !errors.Is(err, ErrNoCreationDate) {
		t.Errorf("Expected ErrNoCreationDate, got %v", err)
	}
}
