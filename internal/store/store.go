// Package store owns the handoff contracts between pipeline stages: typed
// JSON documents on disk, each fully overwritten per run so no stale data
// survives across queries. Writes are atomic (temp file + rename); each
// artifact has exactly one writer stage and one reader stage.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sameerk147/repurpose/internal/eventlog"
	"github.com/sameerk147/repurpose/internal/model"
)

var (
	// ErrMissingHandoff means a stage's required input artifact is absent.
	// Fatal to the stage.
	ErrMissingHandoff = errors.New("handoff file not found")

	// ErrMalformedRecord means a persisted record is missing required
	// fields. Fatal at the store boundary rather than a silent zero value.
	ErrMalformedRecord = errors.New("malformed handoff record")
)

// Store resolves and manages the per-run artifact layout under a workspace
// directory.
type Store struct {
	root string
	log  *eventlog.Logger
}

// New creates a store rooted at the given workspace directory.
func New(root string, log *eventlog.Logger) *Store {
	return &Store{root: root, log: log.With("Store")}
}

// LiteraturePath is the mining stage's output artifact.
func (s *Store) LiteraturePath() string {
	return filepath.Join(s.root, "data", "raw_literature.json")
}

// HypothesesPath is the reasoning stage's output artifact.
func (s *Store) HypothesesPath() string {
	return filepath.Join(s.root, "data", "hypotheses.json")
}

// ResultsPath is the validation stage's output artifact.
func (s *Store) ResultsPath() string {
	return filepath.Join(s.root, "data", "validated_results.json")
}

// IndexDir is the retrieval index directory written by the indexing stage.
func (s *Store) IndexDir() string {
	return filepath.Join(s.root, "index")
}

// Reset deletes every stage artifact from the previous run so old disease
// data never bleeds into a new query. Called unconditionally at the start of
// every pipeline run.
func (s *Store) Reset() error {
	files := []string{s.LiteraturePath(), s.HypothesesPath(), s.ResultsPath()}
	for _, path := range files {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("remove %s: %w", path, err)
		}
		s.log.Infof("[CLEAN] Deleted %s", filepath.Base(path))
	}

	if err := os.RemoveAll(s.IndexDir()); err != nil {
		return fmt.Errorf("remove index dir: %w", err)
	}
	s.log.Infof("[CLEAN] Deleted directory %s/", filepath.Base(s.IndexDir()))
	return nil
}

// WriteLiterature persists mined records, replacing any previous artifact.
func (s *Store) WriteLiterature(records []model.LiteratureRecord) error {
	if records == nil {
		records = []model.LiteratureRecord{}
	}
	return s.writeJSON(s.LiteraturePath(), records)
}

// ReadLiterature loads the mining stage's output and validates required
// fields.
func (s *Store) ReadLiterature() ([]model.LiteratureRecord, error) {
	var records []model.LiteratureRecord
	if err := s.readJSON(s.LiteraturePath(), &records); err != nil {
		return nil, err
	}
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: literature record %d has no id", ErrMalformedRecord, i)
		}
	}
	return records, nil
}

// WriteHypotheses persists generated candidates. An empty slice is a valid
// artifact: the reasoning stage degrades to zero candidates rather than
// crashing on malformed generation output.
func (s *Store) WriteHypotheses(candidates []model.Candidate) error {
	if candidates == nil {
		candidates = []model.Candidate{}
	}
	return s.writeJSON(s.HypothesesPath(), candidates)
}

// ReadHypotheses loads the reasoning stage's output and validates required
// fields.
func (s *Store) ReadHypotheses() ([]model.Candidate, error) {
	var candidates []model.Candidate
	if err := s.readJSON(s.HypothesesPath(), &candidates); err != nil {
		return nil, err
	}
	for i, c := range candidates {
		if c.Drug == "" || c.TargetDisease == "" {
			return nil, fmt.Errorf("%w: candidate %d missing drug or target_disease", ErrMalformedRecord, i)
		}
	}
	return candidates, nil
}

// WriteResults persists validated results, replacing any previous artifact.
// The artifact is never blank when at least one hypothesis reached the
// validator: the validator emits one result per candidate regardless of
// cross-check outcome.
func (s *Store) WriteResults(results []model.ValidatedResult) error {
	if results == nil {
		results = []model.ValidatedResult{}
	}
	return s.writeJSON(s.ResultsPath(), results)
}

// ReadResults loads the validation stage's output.
func (s *Store) ReadResults() ([]model.ValidatedResult, error) {
	var results []model.ValidatedResult
	if err := s.readJSON(s.ResultsPath(), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// writeJSON atomically replaces the artifact at path: the document is
// written to a temp file in the same directory and renamed into place.
func (s *Store) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}

	s.log.Infof("Saved %s", path)
	return nil
}

func (s *Store) readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMissingHandoff, path)
		}
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedRecord, filepath.Base(path), err)
	}
	return nil
}
