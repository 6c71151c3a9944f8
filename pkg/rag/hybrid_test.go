package rag

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
)

func TestHybridCombinesBothSources(t *testing.T) {
	dir := t.TempDir()
	writeGuidelines(t, dir, "lung")
	local := NewLocalRetriever(NewIndexManager(dir, filepath.Join(dir, "index"), newFake()))

	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"esearchresult":{"idlist":["42"]}}`)
	}))
	defer search.Close()
	fetch := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(articleXML))
	}))
	defer fetch.Close()
	online := NewPubMedClient(search.URL, fetch.URL, time.Second, nil, 0)

	hybrid := NewHybridRetriever(local, online, 2, 3)
	items := hybrid.Retrieve(context.Background(), "lung", "radiation options", []string{"lung stage I treatment"})

	if len(items) != 3 {
		t.Fatalf("expected 2 local + 1 literature item, got %d", len(items))
	}

	var localCount, pubmedCount int
	for _, item := range items {
		switch item.Source {
		case "NCCN-lung":
			localCount++
		case "PubMed":
			pubmedCount++
		default:
			t.Fatalf("unexpected provenance %q", item.Source)
		}
	}
	if localCount != 2 || pubmedCount != 1 {
		t.Fatalf("expected 2 guideline and 1 literature item, got %d/%d", localCount, pubmedCount)
	}
}

func TestHybridSurvivesOnlineOutage(t *testing.T) {
	dir := t.TempDir()
	writeGuidelines(t, dir, "lung")
	local := NewLocalRetriever(NewIndexManager(dir, filepath.Join(dir, "index"), newFake()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	online := NewPubMedClient(down.URL, down.URL, time.Second, nil, 0)

	hybrid := NewHybridRetriever(local, online, 2, 3)
	items := hybrid.Retrieve(context.Background(), "lung", "radiation options", []string{"lung stage I treatment"})
	if len(items) != 2 {
		t.Fatalf("expected guideline items despite literature outage, got %d", len(items))
	}
}

func TestHybridSurvivesMissingIndex(t *testing.T) {
	dir := t.TempDir()
	local := NewLocalRetriever(NewIndexManager(dir, filepath.Join(dir, "index"), newFake()))

	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"esearchresult":{"idlist":["42"]}}`)
	}))
	defer search.Close()
	fetch := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(articleXML))
	}))
	defer fetch.Close()
	online := NewPubMedClient(search.URL, fetch.URL, time.Second, nil, 0)

	hybrid := NewHybridRetriever(local, online, 2, 3)
	items := hybrid.Retrieve(context.Background(), "pancreas", "treatment", []string{"pancreas treatment"})
	if len(items) != 1 {
		t.Fatalf("expected literature item despite missing index, got %d", len(items))
	}
	if items[0].Source != "PubMed" {
		t.Fatalf("unexpected provenance %q", items[0].Source)
	}
}
