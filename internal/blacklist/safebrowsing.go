package blacklist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ppiankov/phishlens/internal/model"
)

var (
	safeBrowsingThreatTypes   = []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION"}
	safeBrowsingPlatformTypes = []string{"ANY_PLATFORM"}
)

// SafeBrowsing queries the Google Safe Browsing v4 threatMatches:find endpoint
type SafeBrowsing struct {
	endpoint   string
	apiKey     string
	clientID   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSafeBrowsing creates a client; an empty apiKey disables the check
func NewSafeBrowsing(endpoint, apiKey, clientID string, httpClient *http.Client, logger *slog.Logger) *SafeBrowsing {
	if logger == nil {
		logger = slog.Default()
	}
	return &SafeBrowsing{
		endpoint:   endpoint,
		apiKey:     apiKey,
		clientID:   clientID,
		httpClient: httpClient,
		logger:     logger,
	}
}

type sbClient struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type sbThreatEntry struct {
	URL string `json:"url"`
}

type sbThreatInfo struct {
	ThreatTypes      []string        `json:"threatTypes"`
	PlatformTypes    []string        `json:"platformTypes"`
	ThreatEntryTypes []string        `json:"threatEntryTypes"`
	ThreatEntries    []sbThreatEntry `json:"threatEntries"`
}

type sbRequest struct {
	Client     sbClient     `json:"client"`
	ThreatInfo sbThreatInfo `json:"threatInfo"`
}

type sbResponse struct {
	Matches []json.RawMessage `json:"matches"`
}

// Check sends one uncached lookup for rawURL
func (s *SafeBrowsing) Check(ctx context.Context, rawURL string) model.BlacklistStatus {
	if s.apiKey == "" {
		return model.BlacklistUnknown
	}

	matched, err := s.lookup(ctx, rawURL)
	if err != nil {
		s.logger.Debug("safe browsing lookup failed", "error", err)
		return model.BlacklistUnknown
	}
	if matched {
		return model.BlacklistListed
	}
	return model.BlacklistClean
}

func (s *SafeBrowsing) lookup(ctx context.Context, rawURL string) (bool, error) {
	payload := sbRequest{
		Client: sbClient{ClientID: s.clientID, ClientVersion: "1.0"},
		ThreatInfo: sbThreatInfo{
			ThreatTypes:      safeBrowsingThreatTypes,
			PlatformTypes:    safeBrowsingPlatformTypes,
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    []sbThreatEntry{{URL: rawURL}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := s.endpoint + "?key=" + url.QueryEscape(s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result sbResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return len(result.Matches) > 0, nil
}
