package resources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"raindropmcp/internal/app/apptest"
	"raindropmcp/internal/domain"
)

func newTestResolver(t *testing.T, api *apptest.FakeAPI) *Resolver {
	t.Helper()
	diag, err := NewStaticEntry(domain.ResourceDescriptor{URI: domain.DiagnosticsURI, Name: "diagnostics"},
		domain.DiagnosticsSnapshot{Name: "raindrop-mcp", Version: "test"})
	require.NoError(t, err)
	profile, err := NewStaticEntry(domain.ResourceDescriptor{URI: domain.UserProfileURI, Name: "user-profile"},
		map[string]any{"placeholder": true})
	require.NoError(t, err)

	return NewResolver(Options{API: api, Static: []StaticEntry{diag, profile}})
}

func TestReadCollectionFetchesByID(t *testing.T) {
	api := apptest.NewFakeAPI()
	api.Collections = []domain.Collection{{ID: 123, Title: "Reading"}}
	r := newTestResolver(t, api)

	res, err := r.Read(context.Background(), "mcp://collection/123")
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Equal(t, "mcp://collection/123", res.Contents[0].URI)
	require.Equal(t, []any{int64(123)}, api.LastArgs("GetCollection"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &payload))
	require.Equal(t, float64(123), payload["_id"])
}

func TestReadRaindropFetchesByID(t *testing.T) {
	api := apptest.NewFakeAPI()
	r := newTestResolver(t, api)

	res, err := r.Read(context.Background(), "mcp://raindrop/9")
	require.NoError(t, err)
	require.Contains(t, res.Contents[0].Text, `"_id":9`)
	require.Equal(t, 1, api.Calls("GetRaindrop"))
}

func TestReadRejectsMalformedSegment(t *testing.T) {
	for _, uri := range []string{"mcp://collection/abc", "mcp://collection/", "mcp://raindrop/-4", "mcp://raindrop/0", "mcp://collection/+5", "mcp://collection/005"} {
		t.Run(uri, func(t *testing.T) {
			api := apptest.NewFakeAPI()
			r := newTestResolver(t, api)

			_, err := r.Read(context.Background(), uri)
			require.ErrorIs(t, err, domain.ErrValidation)
			require.Zero(t, api.TotalCalls())
		})
	}

	api := apptest.NewFakeAPI()
	_, err := newTestResolver(t, api).Read(context.Background(), "mcp://collection/abc")
	require.Contains(t, err.Error(), `"abc"`)
}

func TestProfilePrefersDynamicResolution(t *testing.T) {
	api := apptest.NewFakeAPI()
	api.User = domain.User{ID: 5, FullName: "Ada"}
	r := newTestResolver(t, api)

	res, err := r.Read(context.Background(), domain.UserProfileURI)
	require.NoError(t, err)
	require.Contains(t, res.Contents[0].Text, "Ada")
	require.NotContains(t, res.Contents[0].Text, "placeholder")
	require.Equal(t, 1, api.Calls("GetUser"))
}

func TestReadUnknownURIIsNotFound(t *testing.T) {
	api := apptest.NewFakeAPI()
	r := newTestResolver(t, api)

	_, err := r.Read(context.Background(), "mcp://unknown/thing")
	require.ErrorIs(t, err, domain.ErrResourceNotFound)
	require.Contains(t, err.Error(), "mcp://unknown/thing")
	require.Zero(t, api.TotalCalls())
}

func TestReadStaticDiagnosticsIsIdempotent(t *testing.T) {
	api := apptest.NewFakeAPI()
	r := newTestResolver(t, api)

	first, err := r.Read(context.Background(), domain.DiagnosticsURI)
	require.NoError(t, err)
	second, err := r.Read(context.Background(), domain.DiagnosticsURI)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Len(t, first.Contents, 1)
	require.Zero(t, api.TotalCalls())

	first.Contents[0].Text = "mutated"
	third, err := r.Read(context.Background(), domain.DiagnosticsURI)
	require.NoError(t, err)
	require.Equal(t, second, third)
}

func TestCollaboratorFailureNamesURI(t *testing.T) {
	api := apptest.NewFakeAPI()
	api.Err = domain.E(domain.CodeNotFound, "GET /collection/{id}", "raindrop api returned 404: not found", nil)
	r := newTestResolver(t, api)

	_, err := r.Read(context.Background(), "mcp://collection/77")
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrResourceNotFound)
	require.Contains(t, err.Error(), "resource mcp://collection/77: raindrop api returned 404")

	var domainErr *domain.Error
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, domain.CodeNotFound, domainErr.Code)
	require.Equal(t, "mcp://collection/77", domainErr.Meta["uri"])
}

func TestCollaboratorPlainErrorIsUnavailable(t *testing.T) {
	api := apptest.NewFakeAPI()
	api.Err = errors.New("dial tcp: refused")
	r := newTestResolver(t, api)

	_, err := r.Read(context.Background(), "mcp://raindrop/1")
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeUnavailable, code)
	require.Contains(t, err.Error(), "dial tcp: refused")
}

func TestListMergesStaticAndPatterns(t *testing.T) {
	r := newTestResolver(t, apptest.NewFakeAPI())

	var uris []string
	for _, d := range r.List() {
		uris = append(uris, d.URI)
	}
	require.Equal(t, []string{
		domain.DiagnosticsURI,
		domain.UserProfileURI,
		"mcp://collection/{id}",
		"mcp://raindrop/{id}",
	}, uris)
	require.Equal(t, 2, r.StaticCount())
}
