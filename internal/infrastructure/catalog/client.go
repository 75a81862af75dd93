// Package catalog talks to the menu catalog service. The deal engine keeps
// only item and category IDs, display names come from here.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"promo-engine/pkg/httpx"
	"promo-engine/pkg/lox"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const (
	requestTimeout = 10 * time.Second
	logFieldMaxLen = 4096
)

// Item is the slice of a catalog entry the deal engine cares about.
type Item struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	CategoryID uuid.UUID `json:"categoryId"`
	Price      float64   `json:"price"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL, token string, masker interface{ Mask([]byte) []byte }) *Client {
	transport := httpx.NewLoggingRoundTripper(
		http.DefaultTransport,
		httpx.WithSensitiveDataMasker(masker),
		httpx.WithLogFieldMaxLen(logFieldMaxLen),
	)

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: httpx.NewAuthBearerRoundTripper(transport, staticAuthenticator{token: token}),
			Timeout:   requestTimeout,
		},
	}
}

// ItemsByIDs resolves catalog entries for the given item IDs. Unknown IDs
// are silently absent from the result.
func (c *Client) ItemsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Item, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]Item{}, nil
	}

	query := url.Values{}
	for _, id := range ids {
		query.Add("id", id.String())
	}

	var items []Item
	if err := c.get(ctx, "/v1/items?"+query.Encode(), &items); err != nil {
		return nil, err
	}

	return lox.FilterAssociate(items, func(item Item) (uuid.UUID, bool) {
		return item.ID, item.ID != uuid.Nil
	}), nil
}

// CategoryNames resolves display names for category IDs.
func (c *Client) CategoryNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}

	query := url.Values{}
	for _, id := range ids {
		query.Add("id", id.String())
	}

	var categories []struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}
	if err := c.get(ctx, "/v1/categories?"+query.Encode(), &categories); err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}

	return names, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpClient.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("catalog responded %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// staticAuthenticator serves a pre-issued service token.
type staticAuthenticator struct {
	token string
}

func (a staticAuthenticator) Authenticate(context.Context) error { return nil }
func (a staticAuthenticator) BearerToken() string                { return a.token }
