// Package mine implements the literature mining stage: expand the free-text
// query into search terms, collect matching record ids, deduplicate them,
// fetch the full records, and hand them off through the record store.
package mine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sameerk147/repurpose/internal/eventlog"
	"github.com/sameerk147/repurpose/internal/model"
	"github.com/sameerk147/repurpose/internal/store"
)

// interTermDelay paces consecutive search terms on top of the client's rate
// limit, matching NCBI guidance for burst queries.
const interTermDelay = 340 * time.Millisecond

// Searcher is the literature-search capability the miner depends on.
type Searcher interface {
	Search(ctx context.Context, term string, max int) ([]string, error)
	Fetch(ctx context.Context, ids []string) ([]model.LiteratureRecord, error)
}

// Miner drives the mining stage.
type Miner struct {
	client       Searcher
	store        *store.Store
	maxResults   int
	defaultTerms []string
	log          *eventlog.Logger
}

// NewMiner creates a miner over the given search client and record store.
func NewMiner(client Searcher, st *store.Store, cfg model.MiningConfig, defaultTerms []string, log *eventlog.Logger) *Miner {
	max := cfg.MaxResults
	if max <= 0 {
		max = 50
	}

	return &Miner{
		client:       client,
		store:        st,
		maxResults:   max,
		defaultTerms: defaultTerms,
		log:          log.With("Miner"),
	}
}

// ExpandTerms derives the search term set from a free-text query: the exact
// phrase, the AND-joined tokens plus "repurposing", and the first token
// paired with "cancer". An empty query yields nil so the caller can fall
// back to the configured defaults.
func ExpandTerms(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	parts := strings.Fields(query)
	terms := []string{query}

	if len(parts) > 1 {
		terms = append(terms, parts[0]+" AND "+strings.Join(parts[1:], " AND ")+" AND repurposing")
	} else {
		terms = append(terms, parts[0]+" repurposing")
	}
	terms = append(terms, parts[0]+" AND cancer")

	return terms
}

// DedupIDs removes repeated ids, preserving first-occurrence order.
func DedupIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// Run executes the mining stage for the given query and writes the raw
// literature artifact. Search failures for individual terms degrade to empty
// results; the stage fails only when the handoff cannot be written.
func (m *Miner) Run(ctx context.Context, query string) error {
	terms := ExpandTerms(query)
	if terms == nil {
		terms = m.defaultTerms
	}
	m.log.Infof("Search terms: %v", terms)

	var allIDs []string
	for i, term := range terms {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interTermDelay):
			}
		}

		ids, err := m.client.Search(ctx, term, m.maxResults)
		if err != nil {
			// Recovered at the collaborator boundary: logged, not fatal.
			m.log.Warnf("Search %q failed, continuing with partial results: %v", term, err)
			continue
		}
		allIDs = append(allIDs, ids...)
	}

	unique := DedupIDs(allIDs)
	m.log.Infof("Total unique ids collected: %d", len(unique))

	records, err := m.client.Fetch(ctx, unique)
	if err != nil {
		m.log.Warnf("Fetch failed, writing empty literature set: %v", err)
		records = nil
	}

	if err := m.store.WriteLiterature(records); err != nil {
		return fmt.Errorf("write literature: %w", err)
	}

	m.log.Infof("[HANDOFF] Miner -> Indexer | payload=%s", m.store.LiteraturePath())
	return nil
}
