package raindrop

import (
	"context"
	"net/http"
	"strconv"

	"raindropmcp/internal/domain"
)

// ListCollections returns root collections followed by nested ones.
func (c *Client) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	var roots []domain.Collection
	if _, err := c.items(ctx, call{method: http.MethodGet, endpoint: "/collections", path: "/collections"}, &roots); err != nil {
		return nil, err
	}
	var children []domain.Collection
	if _, err := c.items(ctx, call{method: http.MethodGet, endpoint: "/collections/childrens", path: "/collections/childrens"}, &children); err != nil {
		return nil, err
	}
	return append(roots, children...), nil
}

func (c *Client) GetCollection(ctx context.Context, id int64) (*domain.Collection, error) {
	var out domain.Collection
	if err := c.item(ctx, call{method: http.MethodGet, endpoint: "/collection/{id}", path: collectionPath(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCollection(ctx context.Context, input domain.CollectionInput) (*domain.Collection, error) {
	var out domain.Collection
	if err := c.item(ctx, call{method: http.MethodPost, endpoint: "/collection", path: "/collection", body: input}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCollection(ctx context.Context, id int64, input domain.CollectionInput) (*domain.Collection, error) {
	var out domain.Collection
	if err := c.item(ctx, call{method: http.MethodPut, endpoint: "/collection/{id}", path: collectionPath(id), body: input}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCollection(ctx context.Context, id int64) error {
	_, err := c.fetch(ctx, call{method: http.MethodDelete, endpoint: "/collection/{id}", path: collectionPath(id)})
	return err
}

func collectionPath(id int64) string {
	return "/collection/" + strconv.FormatInt(id, 10)
}
