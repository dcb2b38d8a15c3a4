// Package search adapts the Elasticsearch client to the aggregation layer.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
)

// Client runs aggregation searches and returns only the aggregations object.
type Client struct {
	es *elasticsearch.Client
}

// New connects to the cluster at url. No request is made until first use.
func New(url string) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  []string{url},
		MaxRetries: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &Client{es: es}, nil
}

type searchResponse struct {
	TimedOut     bool            `json:"timed_out"`
	Aggregations json.RawMessage `json:"aggregations"`
}

// Search posts body to index. A timed out search is an error, partial
// aggregations are never returned.
func (c *Client) Search(ctx context.Context, index string, body map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(&buf),
		c.es.Search.WithRequestCache(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("search %s: %s: %s", index, res.Status(), bytes.TrimSpace(msg))
	}
	var out searchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if out.TimedOut {
		return nil, errors.New("search timed out")
	}
	if len(out.Aggregations) == 0 {
		return []byte("{}"), nil
	}
	return out.Aggregations, nil
}

// Ping checks the cluster is reachable.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return nil
}
