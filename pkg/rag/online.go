package rag

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oncoplan-ai/platform/pkg/common/logger"
	"github.com/oncoplan-ai/platform/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

const userAgent = "oncoplan-platform"

// PubMedClient retrieves literature evidence through the NCBI E-utilities:
// esearch for PMIDs, one efetch for the deduplicated union of PMIDs. Any
// failing call degrades to an empty partial result for that call only.
type PubMedClient struct {
	searchURL string
	fetchURL  string
	client    *http.Client
	cache     *redis.Client
	cacheTTL  time.Duration
}

func NewPubMedClient(searchURL, fetchURL string, timeout time.Duration, cache *redis.Client, cacheTTL time.Duration) *PubMedClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PubMedClient{
		searchURL: searchURL,
		fetchURL:  fetchURL,
		client:    &http.Client{Timeout: timeout},
		cache:     cache,
		cacheTTL:  cacheTTL,
	}
}

// Retrieve searches each query for up to k PMIDs (k applies per query), then
// fetches title+abstract for the unique union. Articles without abstract
// text are dropped.
func (c *PubMedClient) Retrieve(ctx context.Context, queries []string, k int) []models.EvidenceItem {
	seen := make(map[string]struct{})
	var pmids []string
	for _, query := range queries {
		for _, id := range c.search(ctx, query, k) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			pmids = append(pmids, id)
		}
	}

	return c.fetch(ctx, pmids)
}

func (c *PubMedClient) search(ctx context.Context, query string, k int) []string {
	if ids, ok := c.cachedSearch(ctx, query, k); ok {
		return ids
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmax", strconv.Itoa(k))
	params.Set("retmode", "json")

	body, err := c.get(ctx, c.searchURL, params)
	if err != nil {
		logger.WithComponent("rag").WithError(err).WithField("query", query).Warn("PubMed search failed")
		return nil
	}

	var result struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		logger.WithComponent("rag").WithError(err).WithField("query", query).Warn("malformed PubMed search response")
		return nil
	}

	c.storeSearch(ctx, query, k, result.ESearchResult.IDList)
	return result.ESearchResult.IDList
}

type efetchResult struct {
	XMLName  xml.Name `xml:"PubmedArticleSet"`
	Articles []struct {
		Title    string   `xml:"MedlineCitation>Article>ArticleTitle"`
		Abstract []string `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	} `xml:"PubmedArticle"`
}

func (c *PubMedClient) fetch(ctx context.Context, pmids []string) []models.EvidenceItem {
	if len(pmids) == 0 {
		return nil
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(pmids, ","))
	params.Set("retmode", "xml")

	body, err := c.get(ctx, c.fetchURL, params)
	if err != nil {
		logger.WithComponent("rag").WithError(err).Warn("PubMed fetch failed")
		return nil
	}

	var result efetchResult
	if err := xml.Unmarshal(body, &result); err != nil {
		logger.WithComponent("rag").WithError(err).Warn("malformed PubMed fetch response")
		return nil
	}

	var items []models.EvidenceItem
	for _, article := range result.Articles {
		abstract := strings.TrimSpace(strings.Join(article.Abstract, " "))
		if abstract == "" {
			continue
		}
		items = append(items, models.EvidenceItem{
			Text:   fmt.Sprintf("%s. %s", strings.TrimSpace(article.Title), abstract),
			Source: "PubMed",
		})
	}
	return items
}

func (c *PubMedClient) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d from %s", resp.StatusCode, endpoint)
	}
	return io.ReadAll(resp.Body)
}

func (c *PubMedClient) cachedSearch(ctx context.Context, query string, k int) ([]string, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, searchCacheKey(query, k)).Result()
	if err != nil {
		return nil, false
	}
	if raw == "" {
		return nil, true
	}
	return strings.Split(raw, ","), true
}

func (c *PubMedClient) storeSearch(ctx context.Context, query string, k int, ids []string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, searchCacheKey(query, k), strings.Join(ids, ","), c.cacheTTL).Err(); err != nil {
		logger.WithComponent("rag").WithError(err).Debug("failed to cache PubMed search result")
	}
}

func searchCacheKey(query string, k int) string {
	return fmt.Sprintf("pubmed:search:%d:%s", k, strings.ToLower(query))
}
