package raindrop

import (
	"context"
	"net/http"
	"strconv"

	"raindropmcp/internal/domain"
)

type tagReplace struct {
	Replace string   `json:"replace"`
	Tags    []string `json:"tags"`
}

type tagDelete struct {
	Tags []string `json:"tags"`
}

// ListTags lists tags in a collection; collectionID 0 lists every tag.
func (c *Client) ListTags(ctx context.Context, collectionID int64) ([]domain.Tag, error) {
	var tags []domain.Tag
	if _, err := c.items(ctx, call{method: http.MethodGet, endpoint: "/tags/{collectionId}", path: tagsPath(collectionID)}, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) RenameTag(ctx context.Context, collectionID int64, from, to string) error {
	return c.MergeTags(ctx, collectionID, []string{from}, to)
}

func (c *Client) MergeTags(ctx context.Context, collectionID int64, names []string, to string) error {
	_, err := c.fetch(ctx, call{
		method:   http.MethodPut,
		endpoint: "/tags/{collectionId}",
		path:     tagsPath(collectionID),
		body:     tagReplace{Replace: to, Tags: names},
	})
	return err
}

func (c *Client) DeleteTags(ctx context.Context, collectionID int64, names []string) error {
	_, err := c.fetch(ctx, call{
		method:   http.MethodDelete,
		endpoint: "/tags/{collectionId}",
		path:     tagsPath(collectionID),
		body:     tagDelete{Tags: names},
	})
	return err
}

func tagsPath(collectionID int64) string {
	if collectionID == 0 {
		return "/tags"
	}
	return "/tags/" + strconv.FormatInt(collectionID, 10)
}
