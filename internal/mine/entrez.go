package mine

import (
	"context"
	"encoding/json"
	"encoding/xml"
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
	"github.com/sameerk147/repurpose/internal/worker"
)

// maxFetchBytes bounds efetch response reads.
const maxFetchBytes = 16 << 20

// EntrezClient talks to the NCBI E-utilities endpoints (esearch/efetch).
// Requests go through a per-host rate limiter to respect the 3 req/s
// polite-pool budget; fetch responses are cached because records are
// immutable once published.
type EntrezClient struct {
	httpClient *http.Client
	baseURL    string
	email      string
	userAgent  string
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	log        *eventlog.Logger
}

// NewEntrezClient creates a client for the given E-utilities base URL.
// responseCache may be nil to disable caching.
func NewEntrezClient(cfg model.MiningConfig, httpCfg model.HTTPConfig, responseCache cache.Cache, cacheTTL time.Duration, log *eventlog.Logger) *EntrezClient {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 3
	}

	return &EntrezClient{
		httpClient: &http.Client{Timeout: httpCfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		email:      cfg.Email,
		userAgent:  httpCfg.UserAgent,
		limiter:    worker.NewLimiter(rps, 1),
		cache:      responseCache,
		cacheTTL:   cacheTTL,
		log:        log.With("Miner"),
	}
}

type esearchEnvelope struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// Search returns record ids matching the term, newest first, up to max.
// API failure is recovered as an empty slice and logged, never propagated as
// fatal from this boundary.
func (c *EntrezClient) Search(ctx context.Context, term string, max int) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmax":  {fmt.Sprintf("%d", max)},
		"retmode": {"json"},
	}
	if c.email != "" {
		params.Set("email", c.email)
	}

	start := time.Now()
	body, status, err := c.get(ctx, c.baseURL+"/esearch.fcgi?"+params.Encode(), "")
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		c.log.Errorf("[API] esearch | FAILED | %s | %v", elapsed, err)
		return nil, err
	}
	if status != http.StatusOK {
		c.log.Errorf("[API] esearch | %d | %s | unexpected status", status, elapsed)
		return nil, fmt.Errorf("esearch: unexpected status %d", status)
	}

	var envelope esearchEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.log.Errorf("[API] esearch | 200 | %s | bad payload: %v", elapsed, err)
		return nil, fmt.Errorf("esearch: decode: %w", err)
	}

	ids := envelope.Result.IDList
	c.log.Infof("[API] esearch | 200 | %s | %d ids", elapsed, len(ids))
	return ids, nil
}

// efetch XML payload, trimmed to the fields the pipeline consumes.
type pubmedArticleSet struct {
	Articles []struct {
		Citation struct {
			PMID    string `xml:"PMID"`
			Article struct {
				Title    string `xml:"ArticleTitle"`
				Abstract struct {
					Sections []string `xml:"AbstractText"`
				} `xml:"Abstract"`
				Authors []struct {
					LastName string `xml:"LastName"`
					Initials string `xml:"Initials"`
				} `xml:"AuthorList>Author"`
				Journal struct {
					Year  string `xml:"JournalIssue>PubDate>Year"`
					Month string `xml:"JournalIssue>PubDate>Month"`
				} `xml:"Journal"`
			} `xml:"Article"`
		} `xml:"MedlineCitation"`
	} `xml:"PubmedArticle"`
}

// Fetch retrieves full abstract records for the given ids, preserving no
// particular order beyond what the API returns.
func (c *EntrezClient) Fetch(ctx context.Context, ids []string) ([]model.LiteratureRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"rettype": {"abstract"},
		"retmode": {"xml"},
	}
	if c.email != "" {
		params.Set("email", c.email)
	}

	cacheKey := cache.Key("efetch", strings.Join(ids, ","))

	start := time.Now()
	body, status, err := c.get(ctx, c.baseURL+"/efetch.fcgi?"+params.Encode(), cacheKey)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		c.log.Errorf("[API] efetch  | FAILED | %s | %v", elapsed, err)
		return nil, err
	}
	if status != http.StatusOK {
		c.log.Errorf("[API] efetch  | %d | %s | unexpected status", status, elapsed)
		return nil, fmt.Errorf("efetch: unexpected status %d", status)
	}

	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		c.log.Errorf("[API] efetch  | 200 | %s | bad payload: %v", elapsed, err)
		return nil, fmt.Errorf("efetch: decode: %w", err)
	}

	records := make([]model.LiteratureRecord, 0, len(set.Articles))
	for _, article := range set.Articles {
		art := article.Citation.Article

		var authors []string
		for _, a := range art.Authors {
			name := strings.TrimSpace(a.LastName + " " + a.Initials)
			if name != "" {
				authors = append(authors, name)
			}
		}

		records = append(records, model.LiteratureRecord{
			ID:       article.Citation.PMID,
			Title:    art.Title,
			Abstract: strings.Join(art.Abstract.Sections, " "),
			Authors:  authors,
			Date:     strings.TrimSpace(art.Journal.Year + " " + art.Journal.Month),
		})
	}

	c.log.Infof("[API] efetch  | 200 | %s | %d abstracts", elapsed, len(records))
	return records, nil
}

// get performs a rate-limited, retrying GET. A non-empty cacheKey serves and
// stores the response body through the client cache; the status of a cache
// hit is reported as 200.
func (c *EntrezClient) get(ctx context.Context, rawURL, cacheKey string) ([]byte, int, error) {
	if cacheKey != "" && c.cache != nil {
		if body, ok := c.cache.Get(cacheKey); ok {
			return body, http.StatusOK, nil
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, 0, fmt.Errorf("parse url: %w", err)
	}
	if err := c.limiter.Wait(ctx, parsed.Host); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httpx.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	if cacheKey != "" && c.cache != nil && resp.StatusCode == http.StatusOK {
		_ = c.cache.Set(cacheKey, body, c.cacheTTL)
	}

	return body, resp.StatusCode, nil
}
