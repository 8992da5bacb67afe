package registry

import (
	"context"
	"fmt"

	"raindropmcp/internal/domain"
)

const (
	toolBookmarkSearch = "bookmark_search"
	toolBookmarkManage = "bookmark_manage"
	toolGetRaindrop    = "getRaindrop"
	toolListRaindrops  = "listRaindrops"
)

type bookmarkSearchArgs struct {
	Search     string   `json:"search,omitempty" jsonschema:"full-text search query"`
	Collection int64    `json:"collection,omitempty" jsonschema:"collection id to search in; 0 searches all bookmarks"`
	Tags       []string `json:"tags,omitempty" jsonschema:"only bookmarks carrying all of these tags"`
	Tag        string   `json:"tag,omitempty" jsonschema:"single tag filter, merged with tags"`
	Important  bool     `json:"important,omitempty" jsonschema:"only bookmarks marked important"`
	Duplicates bool     `json:"duplicates,omitempty" jsonschema:"only duplicate bookmarks"`
	Broken     bool     `json:"broken,omitempty" jsonschema:"only bookmarks with broken links"`
	Highlight  bool     `json:"highlight,omitempty" jsonschema:"only bookmarks with highlights"`
	Domain     string   `json:"domain,omitempty" jsonschema:"only bookmarks from this domain"`
	Page       int      `json:"page,omitempty" jsonschema:"zero-based page number"`
	PerPage    int      `json:"perPage,omitempty" jsonschema:"results per page (max 50)"`
	Sort       string   `json:"sort,omitempty" jsonschema:"sort order such as -created, title or score"`
}

type bookmarkManageArgs struct {
	Operation    string   `json:"operation" jsonschema:"create, update or delete"`
	CollectionID int64    `json:"collectionId,omitempty" jsonschema:"target collection; required for create, moves the bookmark on update"`
	ID           int64    `json:"id,omitempty" jsonschema:"bookmark id; required for update and delete"`
	URL          string   `json:"url,omitempty" jsonschema:"bookmark URL"`
	Title        string   `json:"title,omitempty" jsonschema:"bookmark title"`
	Description  string   `json:"description,omitempty" jsonschema:"bookmark excerpt"`
	Tags         []string `json:"tags,omitempty" jsonschema:"tags, replacing existing tags on update"`
	Important    *bool    `json:"important,omitempty" jsonschema:"mark or unmark as important"`
}

type getRaindropArgs struct {
	ID int64 `json:"id" jsonschema:"bookmark id"`
}

type listRaindropsArgs struct {
	CollectionID int64 `json:"collectionId" jsonschema:"collection id; 0 lists all bookmarks"`
	Limit        int   `json:"limit,omitempty" jsonschema:"maximum number of bookmarks (default 50, max 50)"`
}

func bookmarkSearchTool() ToolDescriptor {
	return ToolDescriptor{
		Name:  toolBookmarkSearch,
		Title: "Search bookmarks",
		Description: "Search bookmarks with optional filters for collection, tags, importance, duplicates, " +
			"broken links, highlights and domain. Returns a summary and one mcp://raindrop/{id} resource link per match.",
		InputSchema: MustSchemaFor[bookmarkSearchArgs](minimum("page", 0), minimum("perPage", 1), maximum("perPage", domain.MaxSearchPerPage)),
		ReadOnly:    true,
		Handler:     searchBookmarks,
	}
}

func searchBookmarks(ctx context.Context, raw map[string]any, tc ToolContext) (*domain.ToolResult, error) {
	args, err := decodeArgs[bookmarkSearchArgs](toolBookmarkSearch, raw)
	if err != nil {
		return nil, err
	}
	tags := trimmedTags(args.Tags)
	if args.Tag != "" {
		tags = append(tags, trimmedTags([]string{args.Tag})...)
	}
	perPage := args.PerPage
	if perPage == 0 {
		perPage = domain.DefaultSearchPerPage
	}

	page, err := tc.API.SearchRaindrops(ctx, domain.SearchParams{
		CollectionID: args.Collection,
		Search:       args.Search,
		Tags:         tags,
		Important:    args.Important,
		Duplicates:   args.Duplicates,
		Broken:       args.Broken,
		Highlights:   args.Highlight,
		Domain:       args.Domain,
		Sort:         args.Sort,
		Page:         args.Page,
		PerPage:      perPage,
	})
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("Found %s (showing %d on page %d)",
		plural(page.Count, "bookmark", "bookmarks"), len(page.Items), args.Page)
	return raindropLinks(summary, page.Items), nil
}

func raindropLinks(summary string, items []domain.Raindrop) *domain.ToolResult {
	links := make([]*domain.ResourceLinkContent, 0, len(items))
	for _, item := range items {
		links = append(links, raindropLink(item))
	}
	return linkResult(summary, links)
}

func bookmarkManageTool() ToolDescriptor {
	return ToolDescriptor{
		Name:  toolBookmarkManage,
		Title: "Manage bookmark",
		Description: "Create, update or delete a bookmark. " +
			"create requires collectionId; update and delete require id.",
		InputSchema: MustSchemaFor[bookmarkManageArgs](
			enum("operation", "create", "update", "delete"),
			minimum("id", 1),
		),
		Destructive: true,
		Handler:     manageBookmark,
	}
}

func manageBookmark(ctx context.Context, raw map[string]any, tc ToolContext) (*domain.ToolResult, error) {
	args, err := decodeArgs[bookmarkManageArgs](toolBookmarkManage, raw)
	if err != nil {
		return nil, err
	}

	input := domain.RaindropInput{
		Link:      optionalString(args.URL),
		Title:     optionalString(args.Title),
		Excerpt:   optionalString(args.Description),
		Important: args.Important,
	}
	if has(raw, "tags") {
		input.Tags = trimmedTags(args.Tags)
	}
	if has(raw, "collectionId") {
		input.Collection = &domain.Ref{ID: args.CollectionID}
	}

	switch args.Operation {
	case "create":
		if !has(raw, "collectionId") {
			return nil, domain.MissingField(toolBookmarkManage, args.Operation, "collectionId")
		}
		created, err := tc.API.CreateRaindrop(ctx, input)
		if err != nil {
			return nil, err
		}
		return entityResult(toolBookmarkManage, created)
	case "update":
		if args.ID == 0 {
			return nil, domain.MissingField(toolBookmarkManage, args.Operation, "id")
		}
		updated, err := tc.API.UpdateRaindrop(ctx, args.ID, input)
		if err != nil {
			return nil, err
		}
		return entityResult(toolBookmarkManage, updated)
	case "delete":
		if args.ID == 0 {
			return nil, domain.MissingField(toolBookmarkManage, args.Operation, "id")
		}
		if err := tc.API.DeleteRaindrop(ctx, args.ID); err != nil {
			return nil, err
		}
		return deletedResult(toolBookmarkManage)
	default:
		return nil, unknownOperation(toolBookmarkManage, args.Operation)
	}
}

func getRaindropTool() ToolDescriptor {
	return ToolDescriptor{
		Name:        toolGetRaindrop,
		Title:       "Get bookmark",
		Description: "Fetch one bookmark by id. Returns a summary and its mcp://raindrop/{id} resource link.",
		InputSchema: MustSchemaFor[getRaindropArgs](minimum("id", 1)),
		ReadOnly:    true,
		Handler:     getRaindrop,
	}
}

func getRaindrop(ctx context.Context, raw map[string]any, tc ToolContext) (*domain.ToolResult, error) {
	args, err := decodeArgs[getRaindropArgs](toolGetRaindrop, raw)
	if err != nil {
		return nil, err
	}
	item, err := tc.API.GetRaindrop(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	return raindropLinks(fmt.Sprintf("Bookmark %d: %s", item.ID, item.Title), []domain.Raindrop{*item}), nil
}

func listRaindropsTool() ToolDescriptor {
	return ToolDescriptor{
		Name:        toolListRaindrops,
		Title:       "List bookmarks in collection",
		Description: "List bookmarks of a collection, newest first. Returns a summary and one mcp://raindrop/{id} resource link per bookmark.",
		InputSchema: MustSchemaFor[listRaindropsArgs](minimum("limit", 1), maximum("limit", domain.MaxSearchPerPage)),
		ReadOnly:    true,
		Handler:     listRaindrops,
	}
}

func listRaindrops(ctx context.Context, raw map[string]any, tc ToolContext) (*domain.ToolResult, error) {
	args, err := decodeArgs[listRaindropsArgs](toolListRaindrops, raw)
	if err != nil {
		return nil, err
	}
	limit := args.Limit
	if limit <= 0 {
		limit = domain.DefaultListRaindropsLimit
	}
	page, err := tc.API.SearchRaindrops(ctx, domain.SearchParams{
		CollectionID: args.CollectionID,
		Sort:         "-created",
		PerPage:      limit,
	})
	if err != nil {
		return nil, err
	}
	items := page.Items
	if len(items) > limit {
		items = items[:limit]
	}
	summary := fmt.Sprintf("Collection %d: %s", args.CollectionID, plural(page.Count, "bookmark", "bookmarks"))
	return raindropLinks(summary, items), nil
}
