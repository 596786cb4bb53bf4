package mine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sameerk147/repurpose/internal/cache"
	"github.com/sameerk147/repurpose/internal/model"
)

const efetchPayload = `<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>11111</PMID>
      <Article>
        <Journal><JournalIssue><PubDate><Year>2021</Year><Month>Mar</Month></PubDate></JournalIssue></Journal>
        <ArticleTitle>Metformin and AMPK</ArticleTitle>
        <Abstract>
          <AbstractText>Metformin activates AMPK.</AbstractText>
          <AbstractText>It suppresses gluconeogenesis.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author><LastName>Smith</LastName><Initials>JA</Initials></Author>
          <Author><LastName>Lee</LastName><Initials>K</Initials></Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func newEutilsServer(t *testing.T, searchCalls, fetchCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(searchCalls, 1)
		if r.URL.Query().Get("db") != "pubmed" {
			t.Errorf("Expected db=pubmed, got %q", r.URL.Query().Get("db"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"esearchresult":{"idlist":["11111","22222","33333"]}}`)
	})
	mux.HandleFunc("/efetch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(fetchCalls, 1)
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, efetchPayload)
	})
	return httptest.NewServer(mux)
}

func newEntrezTestClient(baseURL string, responseCache cache.Cache) *EntrezClient {
	return NewEntrezClient(
		model.MiningConfig{BaseURL: baseURL, RequestsPerSec: 1000, Email: "dev@example.org"},
		model.HTTPConfig{Timeout: 2 * time.Second, UserAgent: "test"},
		responseCache,
		time.Minute,
		nil,
	)
}

func TestEntrezClient_Search(t *testing.T) {
	var searchCalls, fetchCalls int32
	server := newEutilsServer(t, &searchCalls, &fetchCalls)
	defer server.Close()

	client := newEntrezTestClient(server.URL, nil)
	ids, err := client.Search(context.Background(), "metformin AND AMPK", 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(ids) != 3 || ids[0] != "11111" {
		t.Errorf("Unexpected ids: %v", ids)
	}
}

func TestEntrezClient_FetchParsesRecords(t *testing.T) {
	var searchCalls, fetchCalls int32
	server := newEutilsServer(t, &searchCalls, &fetchCalls)
	defer server.Close()

	client := newEntrezTestClient(server.URL, nil)
	records, err := client.Fetch(context.Background(), []string{"11111"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.ID != "11111" {
		t.Errorf("ID = %q, want 11111", rec.ID)
	}
	if rec.Title != "Metformin and AMPK" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Abstract != "Metformin activates AMPK. It suppresses gluconeogenesis." {
		t.Errorf("Abstract sections not joined: %q", rec.Abstract)
	}
	if len(rec.Authors) != 2 || rec.Authors[0] != "Smith JA" {
		t.Errorf("Authors = %v", rec.Authors)
	}
	if rec.Date != "2021 Mar" {
		t.Errorf("Date = %q", rec.Date)
	}
}

func TestEntrezClient_FetchEmptyIDs(t *testing.T) {
	client := newEntrezTestClient("http://unused.invalid", nil)
	records, err := client.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error for empty ids, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestEntrezClient_FetchUsesCache(t *testing.T) {
	var searchCalls, fetchCalls int32
	server := newEutilsServer(t, &searchCalls, &fetchCalls)
	defer server.Close()

	client := newEntrezTestClient(server.URL, cache.NewMemory(time.Minute, time.Minute))

	for i := 0; i < 3; i++ {
		if _, err := client.Fetch(context.Background(), []string{"11111"}); err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
	}

	if got := atomic.LoadInt32(&fetchCalls); got != 1 {
		t.Errorf("Expected 1 upstream call with caching, got %d", got)
	}
}

func TestEntrezClient_SearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newEntrezTestClient(server.URL, nil)
	if _, err := client.Search(context.Background(), "term", 10); err == nil {
		t.Error("Expected error on 400 response")
	}
}
