package rag

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const articleXML = `<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <Article>
        <ArticleTitle>Adjuvant therapy outcomes</ArticleTitle>
        <Abstract>
          <AbstractText>Improved disease-free survival was observed.</AbstractText>
          <AbstractText>Toxicity was manageable.</AbstractText>
        </Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <Article>
        <ArticleTitle>Editorial without abstract</ArticleTitle>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func TestRetrieveDeduplicatesAcrossQueries(t *testing.T) {
	var fetchedIDs atomic.Value

	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("term")
		if strings.Contains(term, "fails") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var ids string
		if strings.Contains(term, "first") {
			ids = `"111","222"`
		} else {
			ids = `"222","333"`
		}
		fmt.Fprintf(w, `{"esearchresult":{"idlist":[%s]}}`, ids)
	}))
	defer search.Close()

	fetch := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetchedIDs.Store(r.URL.Query().Get("id"))
		w.Write([]byte(articleXML))
	}))
	defer fetch.Close()

	client := NewPubMedClient(search.URL, fetch.URL, time.Second, nil, 0)
	items := client.Retrieve(context.Background(), []string{"first query", "this one fails", "second query"}, 2)

	if got := fetchedIDs.Load(); got != "111,222,333" {
		t.Fatalf("expected deduplicated PMID union in one fetch, got %v", got)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item (abstract-less article dropped), got %d", len(items))
	}
	if items[0].Source != "PubMed" {
		t.Fatalf("expected PubMed provenance, got %q", items[0].Source)
	}
	if !strings.Contains(items[0].Text, "Adjuvant therapy outcomes. Improved disease-free survival") {
		t.Fatalf("unexpected item text: %q", items[0].Text)
	}
	if !strings.Contains(items[0].Text, "Toxicity was manageable") {
		t.Fatalf("multi-part abstract not joined: %q", items[0].Text)
	}
}

func TestRetrieveDegradesWhenAllSearchesFail(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer search.Close()

	fetchCalled := false
	fetch := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		fetchCalled = true
	}))
	defer fetch.Close()

	client := NewPubMedClient(search.URL, fetch.URL, time.Second, nil, 0)
	items := client.Retrieve(context.Background(), []string{"anything"}, 3)
	if len(items) != 0 {
		t.Fatalf("expected empty result, got %d items", len(items))
	}
	if fetchCalled {
		t.Fatal("fetch must be skipped when no PMIDs were found")
	}
}

func TestRetrieveDegradesOnMalformedFetch(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"esearchresult":{"idlist":["42"]}}`)
	}))
	defer search.Close()

	fetch := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not xml at all"))
	}))
	defer fetch.Close()

	client := NewPubMedClient(search.URL, fetch.URL, time.Second, nil, 0)
	if items := client.Retrieve(context.Background(), []string{"anything"}, 3); len(items) != 0 {
		t.Fatalf("expected empty result for malformed XML, got %d items", len(items))
	}
}
