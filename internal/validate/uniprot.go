package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sameerk147/repurpose/internal/cache"
	"github.com/sameerk147/repurpose/internal/eventlog"
	"github.com/sameerk147/repurpose/internal/httpx"
	"github.com/sameerk147/repurpose/internal/model"
)

// KnowledgeBase is the external cross-check capability. Implementations map
// network errors and non-200 responses to an error; callers treat any error
// as zero hits.
type KnowledgeBase interface {
	CrossCheck(ctx context.Context, query string) (int, error)
}

// UniProtClient queries the UniProtKB search endpoint for entries matching a
// drug/pathway predicate. Responses are cached per query, so validating the
// same candidate twice never repeats the network call within the TTL.
type UniProtClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	cache      cache.Cache
	cacheTTL   time.Duration
	log        *eventlog.Logger
}

// NewUniProtClient creates a knowledge-base client. kbCache may be nil to
// disable caching.
func NewUniProtClient(cfg model.ValidationConfig, httpCfg model.HTTPConfig, kbCache cache.Cache, cacheTTL time.Duration, log *eventlog.Logger) *UniProtClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &UniProtClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		userAgent:  httpCfg.UserAgent,
		cache:      kbCache,
		cacheTTL:   cacheTTL,
		log:        log.With("Validator"),
	}
}

type uniprotEnvelope struct {
	Results []json.RawMessage `json:"results"`
}

// CrossCheck returns the number of knowledge-base entries matching the
// query. Errors are returned for the caller to absorb as "no match".
func (c *UniProtClient) CrossCheck(ctx context.Context, query string) (int, error) {
	params := url.Values{
		"query":  {query},
		"format": {"json"},
		"size":   {"1"},
	}
	requestURL := c.baseURL + "?" + params.Encode()

	cacheKey := cache.Key("uniprot", query)
	if c.cache != nil {
		if body, ok := c.cache.Get(cacheKey); ok {
			return c.countHits(body)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := httpx.DoWithRetry(ctx, c.httpClient, req, 0)
	elapsed := time.Since(start).Round(10 * time.Millisecond)
	if err != nil {
		c.log.Errorf("[API] UniProt | ERROR | %s | %v", elapsed, err)
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Errorf("[API] UniProt | %d | %s | FAILED", resp.StatusCode, elapsed)
		return 0, fmt.Errorf("uniprot: unexpected status %d", resp.StatusCode)
	}

	hits, err := c.countHits(body)
	if err != nil {
		return 0, err
	}

	if c.cache != nil {
		_ = c.cache.Set(cacheKey, body, c.cacheTTL)
	}

	c.log.Infof("[API] UniProt | 200 | %s | %d hits", elapsed, hits)
	return hits, nil
}

func (c *UniProtClient) countHits(body []byte) (int, error) {
	var envelope uniprotEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, fmt.Errorf("uniprot: decode response: %w", err)
	}
	return len(envelope.Results), nil
}

// BuildQuery combines the drug name, the disjunctively joined pathways, and
// the organism filter into one knowledge-base predicate. Never called with
// an empty pathway list; the validator skips the cross-check instead.
func BuildQuery(drug string, pathways []string, organismID string) string {
	quoted := make([]string, len(pathways))
	for i, p := range pathways {
		quoted[i] = `"` + p + `"`
	}
	return fmt.Sprintf("(%s) AND (%s) AND (organism_id:%s)", drug, strings.Join(quoted, " OR "), organismID)
}

// EvidenceLink builds the human-browsable knowledge-base URL for a result.
func EvidenceLink(drug string, pathways []string) string {
	query := drug
	if len(pathways) > 0 {
		query += " AND " + strings.Join(pathways, " OR ")
	}
	return "https://www.uniprot.org/uniprotkb?query=" + url.QueryEscape(query)
}
