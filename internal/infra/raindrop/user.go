package raindrop

import (
	"context"
	"net/http"

	"raindropmcp/internal/domain"
)

func (c *Client) GetUser(ctx context.Context) (*domain.User, error) {
	env, err := c.fetch(ctx, call{method: http.MethodGet, endpoint: "/user", path: "/user"})
	if err != nil {
		return nil, err
	}
	var out domain.User
	if err := decodeInto(env.User, &out); err != nil {
		return nil, domain.E(domain.CodeInternal, "GET /user", "decode user", err)
	}
	return &out, nil
}
