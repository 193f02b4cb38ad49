package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const mapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "long"},
      "name":        {"type": "text"},
      "description": {"type": "text"},
      "price":       {"type": "keyword"},
      "image":       {"type": "keyword", "index": false}
    }
  }
}`

func NewClient(ctx context.Context, url, user, password string) (*elasticsearch.Client, error) {
	l := logging.FromContext(ctx).With("component", "elasticsearch", "url", url)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: info: %s: %s", res.Status(), body)
	}

	l.Info("elasticsearch_connected")
	return client, nil
}

// ESIndex ranks products with Elasticsearch. Hits are re-read from the
// database, so prices and names always come from the products table.
type ESIndex struct {
	ES    *elasticsearch.Client
	Index string
	Repo  *repo.GormRepo
}

const backfillBatch = 100

// EnsureIndex creates the product index when it does not exist yet and
// reports whether it did.
func (s *ESIndex) EnsureIndex(ctx context.Context) (bool, error) {
	res, err := s.ES.Indices.Exists([]string{s.Index}, s.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("elasticsearch: exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return false, nil
	}

	res, err = s.ES.Indices.Create(s.Index,
		s.ES.Indices.Create.WithContext(ctx),
		s.ES.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
	)
	if err != nil {
		return false, fmt.Errorf("elasticsearch: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return false, fmt.Errorf("elasticsearch: create index: %s", res.Status())
	}
	return true, nil
}

// Backfill indexes every stored product with the bulk API and returns how many were sent.
func (s *ESIndex) Backfill(ctx context.Context) (int, error) {
	l := logging.FromContext(ctx).With("component", "elasticsearch", "index", s.Index)

	sent := 0
	for offset := 0; ; offset += backfillBatch {
		_, items, err := s.Repo.ListProducts(ctx, offset, backfillBatch)
		if err != nil {
			return sent, fmt.Errorf("backfill: list products: %w", err)
		}
		if len(items) == 0 {
			break
		}
		if err := s.bulkIndex(ctx, items); err != nil {
			return sent, err
		}
		sent += len(items)
		if len(items) < backfillBatch {
			break
		}
	}

	l.Info("index_backfilled", "products", sent)
	return sent, nil
}

func (s *ESIndex) bulkIndex(ctx context.Context, items []models.Product) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range items {
		meta := map[string]any{"index": map[string]any{"_id": strconv.FormatUint(uint64(p.ID), 10)}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("backfill: encode: %w", err)
		}
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("backfill: encode: %w", err)
		}
	}

	res, err := s.ES.Bulk(&buf, s.ES.Bulk.WithContext(ctx), s.ES.Bulk.WithIndex(s.Index))
	if err != nil {
		return fmt.Errorf("backfill: bulk: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("backfill: bulk: %s", res.Status())
	}

	var r struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return fmt.Errorf("backfill: decode: %w", err)
	}
	if r.Errors {
		return fmt.Errorf("backfill: bulk reported item errors")
	}
	return nil
}

func (s *ESIndex) Search(ctx context.Context, q string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"_source": false,
		"from":    from,
		"size":    size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}

	found, err := s.Repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return 0, nil, fmt.Errorf("search: load hits: %w", err)
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	// Keep relevance order; documents for deleted products are dropped.
	prods := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			prods = append(prods, p)
		}
	}
	if stale := len(ids) - len(prods); stale > 0 {
		logging.FromContext(ctx).Warn("search_stale_hits", "count", stale)
	}
	return r.Hits.Total.Value, prods, nil
}

func (s *ESIndex) Upsert(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("index: encode: %w", err)
	}
	res, err := s.ES.Index(s.Index, bytes.NewReader(data),
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index: %s", res.Status())
	}
	return nil
}

func (s *ESIndex) Delete(ctx context.Context, id uint) error {
	res, err := s.ES.Delete(s.Index, strconv.FormatUint(uint64(id), 10), s.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("index delete: %s", res.Status())
	}
	return nil
}
