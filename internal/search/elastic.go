package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/Skotchmaster/food_order/internal/models"
)

type menuDoc struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

func toDoc(m models.MenuItem) menuDoc {
	return menuDoc{ID: m.ID, Name: m.Name, Description: m.Description, Image: m.Image, Price: m.Price, Quantity: m.Quantity}
}

func (d menuDoc) item() models.MenuItem {
	return models.MenuItem{ID: d.ID, Name: d.Name, Description: d.Description, Image: d.Image, Price: d.Price, Quantity: d.Quantity}
}

type ESSearcher struct {
	client *elasticsearch.Client
	index  string
}

func NewESSearcher(client *elasticsearch.Client, index string) *ESSearcher {
	return &ESSearcher{client: client, index: index}
}

// NewClient connects to Elasticsearch and checks the cluster answers.
func NewClient(log *slog.Logger, url, user, password string) (*elasticsearch.Client, error) {
	log.Info("es_connect", "url", url)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("es client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es info: %s: %s", res.Status(), body)
	}
	return client, nil
}

func (s *ESSearcher) Search(ctx context.Context, query string, offset, limit int) (int64, []models.MenuItem, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": offset,
		"size": limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search encode: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
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
				Source menuDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search decode: %w", err)
	}

	items := make([]models.MenuItem, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		items[i] = hit.Source.item()
	}
	return r.Hits.Total.Value, items, nil
}

func (s *ESSearcher) Index(ctx context.Context, item models.MenuItem) error {
	data, err := json.Marshal(toDoc(item))
	if err != nil {
		return fmt.Errorf("index encode: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(data),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(strconv.Itoa(item.ID)),
	)
	if err != nil {
		return fmt.Errorf("index %d: %w", item.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index %d: %s", item.ID, res.Status())
	}
	return nil
}

// IndexAll pushes every item, stopping at the first failure.
func IndexAll(ctx context.Context, s Searcher, items []models.MenuItem) error {
	for _, it := range items {
		if err := s.Index(ctx, it); err != nil {
			return err
		}
	}
	return nil
}
