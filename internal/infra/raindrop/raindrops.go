package raindrop

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"raindropmcp/internal/domain"
)

func (c *Client) SearchRaindrops(ctx context.Context, params domain.SearchParams) (*domain.RaindropPage, error) {
	query := url.Values{}
	if search := buildSearchQuery(params); search != "" {
		query.Set("search", search)
	}
	if params.Sort != "" {
		query.Set("sort", params.Sort)
	}
	query.Set("page", strconv.Itoa(max(params.Page, 0)))
	query.Set("perpage", strconv.Itoa(clampPerPage(params.PerPage)))

	var items []domain.Raindrop
	env, err := c.items(ctx, call{
		method:   http.MethodGet,
		endpoint: "/raindrops/{collectionId}",
		path:     raindropsPath(params.CollectionID),
		query:    query,
	}, &items)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Raindrop{}
	}
	return &domain.RaindropPage{Items: items, Count: env.Count}, nil
}

func (c *Client) GetRaindrop(ctx context.Context, id int64) (*domain.Raindrop, error) {
	var out domain.Raindrop
	if err := c.item(ctx, call{method: http.MethodGet, endpoint: "/raindrop/{id}", path: raindropPath(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRaindrop(ctx context.Context, input domain.RaindropInput) (*domain.Raindrop, error) {
	var out domain.Raindrop
	if err := c.item(ctx, call{method: http.MethodPost, endpoint: "/raindrop", path: "/raindrop", body: input}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRaindrop(ctx context.Context, id int64, input domain.RaindropInput) (*domain.Raindrop, error) {
	var out domain.Raindrop
	if err := c.item(ctx, call{method: http.MethodPut, endpoint: "/raindrop/{id}", path: raindropPath(id), body: input}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRaindrop(ctx context.Context, id int64) error {
	_, err := c.fetch(ctx, call{method: http.MethodDelete, endpoint: "/raindrop/{id}", path: raindropPath(id)})
	return err
}

// BulkEditRaindrops applies edit to the collection. A failure flag in the
// response is returned in the result rather than as an error.
func (c *Client) BulkEditRaindrops(ctx context.Context, collectionID int64, edit domain.BulkEdit) (*domain.BulkEditResult, error) {
	var query url.Values
	if edit.Nested {
		query = url.Values{"nested": []string{"true"}}
	}
	env, err := c.do(ctx, call{
		method:   http.MethodPut,
		endpoint: "/raindrops/{collectionId}",
		path:     raindropsPath(collectionID),
		query:    query,
		body:     edit,
	})
	if err != nil {
		return nil, err
	}
	return &domain.BulkEditResult{
		Result:       env.ok(),
		Modified:     env.Modified,
		ErrorMessage: env.message(),
	}, nil
}

// buildSearchQuery folds the structured filters into Raindrop's search syntax.
func buildSearchQuery(params domain.SearchParams) string {
	var parts []string
	if s := strings.TrimSpace(params.Search); s != "" {
		parts = append(parts, s)
	}
	for _, tag := range params.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if strings.ContainsAny(tag, " \t") {
			parts = append(parts, `#"`+tag+`"`)
		} else {
			parts = append(parts, "#"+tag)
		}
	}
	if params.Important {
		parts = append(parts, "❤️")
	}
	if params.Broken {
		parts = append(parts, "broken:true")
	}
	if params.Duplicates {
		parts = append(parts, "duplicate:true")
	}
	if params.Highlights {
		parts = append(parts, "highlights:true")
	}
	if d := strings.TrimSpace(params.Domain); d != "" {
		parts = append(parts, "site:"+d)
	}
	return strings.Join(parts, " ")
}

func clampPerPage(perPage int) int {
	switch {
	case perPage <= 0:
		return domain.DefaultSearchPerPage
	case perPage > domain.MaxSearchPerPage:
		return domain.MaxSearchPerPage
	default:
		return perPage
	}
}

func raindropPath(id int64) string {
	return "/raindrop/" + strconv.FormatInt(id, 10)
}

func raindropsPath(collectionID int64) string {
	return "/raindrops/" + strconv.FormatInt(collectionID, 10)
}
