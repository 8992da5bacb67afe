package registry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raindropmcp/internal/app/apptest"
	"raindropmcp/internal/domain"
)

func callTool(t *testing.T, api *apptest.FakeAPI, name string, args map[string]any) (*domain.ToolResult, error) {
	t.Helper()
	reg, err := NewDefaultRegistry()
	require.NoError(t, err)
	tool, ok := reg.Lookup(name)
	require.True(t, ok, "tool %s not registered", name)
	return tool.Handler(context.Background(), args, ToolContext{
		API:         api,
		Diagnostics: apptest.StaticDiagnostics{Value: domain.DiagnosticsSnapshot{Name: "raindrop-mcp", Version: "test"}},
	})
}

func textOf(t *testing.T, c domain.Content) string {
	t.Helper()
	text, ok := c.(*domain.TextContent)
	require.True(t, ok, "expected text content, got %T", c)
	return text.Text
}

func TestManageToolsRejectMissingFieldsWithoutCallingAPI(t *testing.T) {
	tests := []struct {
		tool      string
		operation string
		args      map[string]any
		field     string
	}{
		{"collection_manage", "create", map[string]any{}, "title"},
		{"collection_manage", "update", map[string]any{"title": "x"}, "id"},
		{"collection_manage", "delete", map[string]any{}, "id"},
		{"bookmark_manage", "create", map[string]any{"url": "https://go.dev"}, "collectionId"},
		{"bookmark_manage", "update", map[string]any{"title": "x"}, "id"},
		{"bookmark_manage", "delete", map[string]any{}, "id"},
		{"tag_manage", "rename", map[string]any{"collectionId": 0, "newName": "b"}, "tagNames"},
		{"tag_manage", "rename", map[string]any{"collectionId": 0, "tagNames": []any{"a"}}, "newName"},
		{"tag_manage", "merge", map[string]any{"collectionId": 0, "tagNames": []any{"a", "b"}}, "newName"},
		{"tag_manage", "merge", map[string]any{"collectionId": 0, "newName": "c"}, "tagNames"},
		{"tag_manage", "delete", map[string]any{"collectionId": 0}, "tagNames"},
		{"highlight_manage", "create", map[string]any{"text": "quote"}, "bookmarkId"},
		{"highlight_manage", "create", map[string]any{"bookmarkId": 5}, "text"},
		{"highlight_manage", "update", map[string]any{"note": "n"}, "id"},
		{"highlight_manage", "delete", map[string]any{}, "id"},
	}

	for _, tt := range tests {
		t.Run(tt.tool+"/"+tt.operation+"/"+tt.field, func(t *testing.T) {
			api := apptest.NewFakeAPI()
			args := map[string]any{"operation": tt.operation}
			for k, v := range tt.args {
				args[k] = v
			}

			res, err := callTool(t, api, tt.tool, args)
			require.Nil(t, res)
			require.ErrorIs(t, err, domain.ErrValidation)
			require.Contains(t, err.Error(), tt.field)
			require.Contains(t, err.Error(), tt.operation)

			var domainErr *domain.Error
			require.True(t, errors.As(err, &domainErr))
			require.Equal(t, tt.field, domainErr.Meta["field"])
			require.Zero(t, api.TotalCalls())
		})
	}
}

func TestCollectionDeleteReturnsDeleted(t *testing.T) {
	api := apptest.NewFakeAPI()

	res, err := callTool(t, api, "collection_manage", map[string]any{"operation": "delete", "id": 42})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	require.JSONEq(t, `{"deleted":true}`, textOf(t, res.Content[0]))
	require.Equal(t, domain.Deleted{Deleted: true}, res.Structured)
	require.Equal(t, []any{int64(42)}, api.LastArgs("DeleteCollection"))
}

func TestCollectionCreateSendsOnlyProvidedFields(t *testing.T) {
	api := apptest.NewFakeAPI()

	res, err := callTool(t, api, "collection_manage", map[string]any{"operation": "create", "title": "Reading"})
	require.NoError(t, err)

	input := api.LastArgs("CreateCollection")[0].(domain.CollectionInput)
	require.NotNil(t, input.Title)
	require.Nil(t, input.Color)
	require.Nil(t, input.Description)

	var created domain.Collection
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res.Content[0])), &created))
	require.Equal(t, "Reading", created.Title)
}

func TestCollectionListLinks(t *testing.T) {
	api := apptest.NewFakeAPI()
	api.Collections = []domain.Collection{{ID: 1, Title: "A", Count: 3}, {ID: 2, Title: "B", Parent: &domain.Ref{ID: 1}}}

	res, err := callTool(t, api, "collection_list", nil)
	require.NoError(t, err)
	require.Len(t, res.Content, 3)
	require.Equal(t, "Found 2 collections", textOf(t, res.Content[0]))

	link := res.Content[2].(*domain.ResourceLinkContent)
	require.Equal(t, "mcp://collection/2", link.URI)
	require.Equal(t, int64(1), link.Meta["parentId"])
}

func TestBookmarkSearchShapesLinks(t *testing.T) {
	api := apptest.NewFakeAPI()
	api.Raindrops = []domain.Raindrop{
		{ID: 11, Title: "Go", Link: "https://go.dev"},
		{ID: 12, Link: "https://pkg.go.dev"},
	}

	res, err := callTool(t, api, "bookmark_search", map[string]any{"search": "foo"})
	require.NoError(t, err)
	require.Len(t, res.Content, 3)

	_, isText := res.Content[0].(*domain.TextContent)
	require.True(t, isText)

	var uris []string
	for _, c := range res.Content[1:] {
		link, ok := c.(*domain.ResourceLinkContent)
		require.True(t, ok)
		uris = append(uris, link.URI)
	}
	require.Equal(t, []string{"mcp://raindrop/11", "mcp://raindrop/12"}, uris)
	require.Equal(t, "https://pkg.go.dev", res.Content[2].(*domain.ResourceLinkContent).Name)

	params := api.LastArgs("SearchRaindrops")[0].(domain.SearchParams)
	require.Equal(t, "foo", params.Search)
	require.Equal(t, domain.DefaultSearchPerPage, params.PerPage)
}

func TestBookmarkSearchMergesTagFilters(t *testing.T) {
	api := apptest.NewFakeAPI()

	_, err := callTool(t, api, "bookmark_search", map[string]any{
		"tags":       []any{"go", " "},
		"tag":        "web",
		"collection": 7,
		"important":  true,
		"highlight":  true,
	})
	require.NoError(t, err)

	got := api.LastArgs("SearchRaindrops")[0].(domain.SearchParams)
	want := domain.SearchParams{
		CollectionID: 7,
		Tags:         []string{"go", "web"},
		Important:    true,
		Highlights:   true,
		PerPage:      domain.DefaultSearchPerPage,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("search params mismatch (-want +got):\n%s", diff)
	}
}

func TestBookmarkManageCreateAndMove(t *testing.T) {
	api := apptest.NewFakeAPI()

	_, err := callTool(t, api, "bookmark_manage", map[string]any{
		"operation":    "create",
		"collectionId": 0,
		"url":          "https://go.dev",
		"important":    false,
	})
	require.NoError(t, err)
	input := api.LastArgs("CreateRaindrop")[0].(domain.RaindropInput)
	require.NotNil(t, input.Collection)
	require.Equal(t, int64(0), input.Collection.ID)
	require.NotNil(t, input.Important)
	require.False(t, *input.Important)
	require.Nil(t, input.Tags)

	_, err = callTool(t, api, "bookmark_manage", map[string]any{"operation": "update", "id": 9, "tags": []any{}})
	require.NoError(t, err)
	update := api.LastArgs("UpdateRaindrop")[1].(domain.RaindropInput)
	require.Nil(t, update.Collection)
	require.NotNil(t, update.Tags)
	require.Empty(t, update.Tags)
}

func TestTagManageOperations(t *testing.T) {
	api := apptest.NewFakeAPI()

	res, err := callTool(t, api, "tag_manage", map[string]any{
		"operation": "rename", "collectionId": 3, "tagNames": []any{"old", "ignored"}, "newName": "new",
	})
	require.NoError(t, err)
	require.Equal(t, []any{int64(3), "old", "new"}, api.LastArgs("RenameTag"))
	require.JSONEq(t, `{"collectionId":3,"from":["old"],"to":"new"}`, textOf(t, res.Content[0]))

	_, err = callTool(t, api, "tag_manage", map[string]any{
		"operation": "merge", "collectionId": 0, "tagNames": []any{"a", "b"}, "newName": "c",
	})
	require.NoError(t, err)
	require.Equal(t, []any{int64(0), []string{"a", "b"}, "c"}, api.LastArgs("MergeTags"))

	res, err = callTool(t, api, "tag_manage", map[string]any{
		"operation": "delete", "collectionId": 0, "tagNames": []any{"a"},
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"deleted":true}`, textOf(t, res.Content[0]))
}

func TestHighlightManageUsesStringIDs(t *testing.T) {
	api := apptest.NewFakeAPI()

	res, err := callTool(t, api, "highlight_manage", map[string]any{"operation": "create", "bookmarkId": 5, "text": "quote"})
	require.NoError(t, err)
	var created domain.Highlight
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res.Content[0])), &created))
	assert.Equal(t, "quote", created.Text)
	assert.Equal(t, int64(5), created.RaindropID)

	_, err = callTool(t, api, "highlight_manage", map[string]any{"operation": "delete", "id": "62388e9e48b63606f41e44a6"})
	require.NoError(t, err)
	require.Equal(t, []any{"62388e9e48b63606f41e44a6"}, api.LastArgs("DeleteHighlight"))
}

func TestUnknownOperationIsValidationError(t *testing.T) {
	api := apptest.NewFakeAPI()

	_, err := callTool(t, api, "collection_manage", map[string]any{"operation": "archive"})
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Zero(t, api.TotalCalls())
}

func TestCollaboratorErrorsPropagate(t *testing.T) {
	api := apptest.NewFakeAPI()
	api.Err = domain.E(domain.CodeUnavailable, "GET /collections", "boom", nil)

	res, err := callTool(t, api, "collection_list", nil)
	require.Nil(t, res)
	require.ErrorContains(t, err, "boom")
}

func TestBulkEditFailureFlagBecomesErrorResult(t *testing.T) {
	api := apptest.NewFakeAPI()
	api.BulkResult = domain.BulkEditResult{Result: false, ErrorMessage: "quota exceeded"}

	res, err := callTool(t, api, "bulk_edit_raindrops", map[string]any{"collectionId": 1, "ids": []any{1, 2}})
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Len(t, res.Content, 1)
	require.Contains(t, textOf(t, res.Content[0]), "quota exceeded")
}

func TestBulkEditTransportErrorBecomesErrorResult(t *testing.T) {
	api := apptest.NewFakeAPI()
	api.BulkErr = errors.New("connection reset")

	res, err := callTool(t, api, "bulk_edit_raindrops", map[string]any{"collectionId": 1})
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, textOf(t, res.Content[0]), "connection reset")
}

func TestBulkEditBuildsEditFromDefinedFields(t *testing.T) {
	api := apptest.NewFakeAPI()

	res, err := callTool(t, api, "bulk_edit_raindrops", map[string]any{
		"collectionId": 4,
		"important":    true,
		"media":        []any{"https://img"},
		"collection":   9,
		"nested":       true,
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	args := api.LastArgs("BulkEditRaindrops")
	require.Equal(t, int64(4), args[0])
	edit := args[1].(domain.BulkEdit)
	require.NotNil(t, edit.Important)
	require.Nil(t, edit.Tags)
	require.Nil(t, edit.Cover)
	require.Equal(t, []domain.MediaRef{{Link: "https://img"}}, edit.Media)
	require.Equal(t, &domain.Ref{ID: 9}, edit.Collection)
	require.True(t, edit.Nested)
}

func TestEmptyListsClearTagsAndMedia(t *testing.T) {
	api := apptest.NewFakeAPI()

	res, err := callTool(t, api, "bulk_edit_raindrops", map[string]any{
		"collectionId": 5,
		"tags":         []any{},
		"media":        []any{},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	encoded, err := json.Marshal(api.LastArgs("BulkEditRaindrops")[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":[],"media":[]}`, string(encoded))

	_, err = callTool(t, api, "bookmark_manage", map[string]any{"operation": "update", "id": 7, "tags": []any{}})
	require.NoError(t, err)
	encoded, err = json.Marshal(api.LastArgs("UpdateRaindrop")[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":[]}`, string(encoded))
}

func TestListRaindropsDefaultsLimit(t *testing.T) {
	api := apptest.NewFakeAPI()
	api.Raindrops = []domain.Raindrop{{ID: 1}}

	res, err := callTool(t, api, "listRaindrops", map[string]any{"collectionId": 5})
	require.NoError(t, err)
	require.Len(t, res.Content, 2)

	params := api.LastArgs("SearchRaindrops")[0].(domain.SearchParams)
	require.Equal(t, int64(5), params.CollectionID)
	require.Equal(t, domain.DefaultListRaindropsLimit, params.PerPage)
}

func TestGetRaindropReturnsLink(t *testing.T) {
	api := apptest.NewFakeAPI()

	res, err := callTool(t, api, "getRaindrop", map[string]any{"id": 77})
	require.NoError(t, err)
	require.Len(t, res.Content, 2)
	require.Equal(t, "mcp://raindrop/77", res.Content[1].(*domain.ResourceLinkContent).URI)
}

func TestTagListEmitsLinePerTag(t *testing.T) {
	api := apptest.NewFakeAPI()
	api.Tags = []domain.Tag{{Name: "go", Count: 4}, {Name: "web", Count: 1}}

	res, err := callTool(t, api, "tag_list", nil)
	require.NoError(t, err)
	require.Len(t, res.Content, 3)
	require.Equal(t, "go (4)", textOf(t, res.Content[1]))
}

func TestHighlightListLinksToBookmark(t *testing.T) {
	api := apptest.NewFakeAPI()
	api.Highlights = []domain.Highlight{{ID: "h1", RaindropID: 33, Text: "some text", Color: "yellow"}}

	res, err := callTool(t, api, "highlight_list", map[string]any{"collectionId": 2})
	require.NoError(t, err)
	require.Len(t, res.Content, 2)
	link := res.Content[1].(*domain.ResourceLinkContent)
	require.Equal(t, "mcp://raindrop/33", link.URI)
	require.Equal(t, "h1", link.Meta["highlightId"])
	require.Equal(t, []any{int64(2)}, api.LastArgs("ListHighlights"))
}

func TestDiagnosticsReturnsSingleResourceLink(t *testing.T) {
	api := apptest.NewFakeAPI()

	res, err := callTool(t, api, "diagnostics", map[string]any{"includeEnvironment": true})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	link := res.Content[0].(*domain.ResourceLinkContent)
	require.Equal(t, domain.DiagnosticsURI, link.URI)

	snapshot := res.Structured.(domain.DiagnosticsSnapshot)
	require.Equal(t, "[redacted]", snapshot.Environment["raindrop.accessToken"])
	require.Zero(t, api.TotalCalls())
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate(" short ", 10))
	require.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
