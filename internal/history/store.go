package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ppiankov/phishlens/internal/model"
	"github.com/ppiankov/phishlens/internal/score"
	"github.com/ppiankov/phishlens/internal/util"
)

// Stats counts stored analyses per verdict tier
type Stats struct {
	ProbablySafe int `json:"probably_safe"`
	Suspicious   int `json:"suspicious"`
	Malicious    int `json:"malicious"`
}

// FileStore keeps every completed analysis in one JSON array file.
// All access goes through the mutex, so one process never interleaves
// a read-modify-write with another.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by path. The file is created lazily.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Append adds one result to the end of the history
func (s *FileStore) Append(result *model.AnalysisResult) error {
	if result == nil {
		return errors.New("append: nil result")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	records = append(records, *result)
	return s.save(records)
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *FileStore) List(limit int) ([]model.AnalysisResult, error) {
	s.mu.Lock()
	records, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	out := make([]model.AnalysisResult, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	return out, nil
}

// Stats bins every stored record by the verdict its score maps to today
func (s *FileStore) Stats() (Stats, error) {
	s.mu.Lock()
	records, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, r := range records {
		switch score.VerdictFor(r.RiskScore) {
		case model.VerdictMalicious:
			stats.Malicious++
		case model.VerdictSuspicious:
			stats.Suspicious++
		default:
			stats.ProbablySafe++
		}
	}
	return stats, nil
}

// Clear removes every record
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]model.AnalysisResult{})
}

func (s *FileStore) load() ([]model.AnalysisResult, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.AnalysisResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(data) == 0 {
		return []model.AnalysisResult{}, nil
	}

	var records []model.AnalysisResult
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", s.path, err)
	}
	return records, nil
}

func (s *FileStore) save(records []model.AnalysisResult) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := util.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
