package raindrop

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"raindropmcp/internal/domain"
)

type highlightCreate struct {
	RaindropRef int64 `json:"raindropRef"`
	domain.HighlightInput
}

func (c *Client) ListHighlights(ctx context.Context, collectionID int64) ([]domain.Highlight, error) {
	path := "/highlights"
	endpoint := "/highlights"
	if collectionID != 0 {
		path += "/" + strconv.FormatInt(collectionID, 10)
		endpoint = "/highlights/{collectionId}"
	}
	var out []domain.Highlight
	if _, err := c.items(ctx, call{method: http.MethodGet, endpoint: endpoint, path: path}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateHighlight(ctx context.Context, raindropID int64, input domain.HighlightInput) (*domain.Highlight, error) {
	var out domain.Highlight
	err := c.item(ctx, call{
		method:   http.MethodPost,
		endpoint: "/highlights",
		path:     "/highlights",
		body:     highlightCreate{RaindropRef: raindropID, HighlightInput: input},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateHighlight(ctx context.Context, id string, input domain.HighlightInput) (*domain.Highlight, error) {
	var out domain.Highlight
	if err := c.item(ctx, call{method: http.MethodPut, endpoint: "/highlights/{id}", path: highlightPath(id), body: input}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteHighlight(ctx context.Context, id string) error {
	_, err := c.fetch(ctx, call{method: http.MethodDelete, endpoint: "/highlights/{id}", path: highlightPath(id)})
	return err
}

func highlightPath(id string) string {
	return "/highlights/" + url.PathEscape(id)
}
