package registry

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"raindropmcp/internal/domain"
)

const (
	toolHighlightList   = "highlight_list"
	toolHighlightManage = "highlight_manage"

	highlightNameLimit = 80
)

type highlightListArgs struct {
	CollectionID int64 `json:"collectionId,omitempty" jsonschema:"collection id; omit to list all highlights"`
}

type highlightManageArgs struct {
	Operation  string `json:"operation" jsonschema:"create, update or delete"`
	BookmarkID int64  `json:"bookmarkId,omitempty" jsonschema:"bookmark to highlight; required for create"`
	ID         string `json:"id,omitempty" jsonschema:"highlight id; required for update and delete"`
	Text       string `json:"text,omitempty" jsonschema:"highlighted text; required for create"`
	Note       string `json:"note,omitempty" jsonschema:"annotation attached to the highlight"`
	Color      string `json:"color,omitempty" jsonschema:"highlight color such as yellow or blue"`
}

func highlightListTool() ToolDescriptor {
	return ToolDescriptor{
		Name:        toolHighlightList,
		Title:       "List highlights",
		Description: "List highlights, optionally scoped to one collection. Returns a summary and one link per highlight to its mcp://raindrop/{id} bookmark.",
		InputSchema: MustSchemaFor[highlightListArgs](),
		ReadOnly:    true,
		Handler:     listHighlights,
	}
}

func listHighlights(ctx context.Context, raw map[string]any, tc ToolContext) (*domain.ToolResult, error) {
	args, err := decodeArgs[highlightListArgs](toolHighlightList, raw)
	if err != nil {
		return nil, err
	}
	highlights, err := tc.API.ListHighlights(ctx, args.CollectionID)
	if err != nil {
		return nil, err
	}
	links := make([]*domain.ResourceLinkContent, 0, len(highlights))
	for _, h := range highlights {
		meta := map[string]any{"highlightId": h.ID, "bookmarkId": h.RaindropID}
		if h.Color != "" {
			meta["color"] = h.Color
		}
		if h.Note != "" {
			meta["note"] = h.Note
		}
		links = append(links, &domain.ResourceLinkContent{
			URI:         domain.RaindropURI(h.RaindropID),
			Name:        truncate(h.Text, highlightNameLimit),
			Description: h.Title,
			MIMEType:    domain.MIMETypeJSON,
			Meta:        meta,
		})
	}
	return linkResult(fmt.Sprintf("Found %s", plural(len(highlights), "highlight", "highlights")), links), nil
}

func highlightManageTool() ToolDescriptor {
	return ToolDescriptor{
		Name:  toolHighlightManage,
		Title: "Manage highlight",
		Description: "Create, update or delete a highlight. " +
			"create requires bookmarkId and text; update and delete require id.",
		InputSchema: MustSchemaFor[highlightManageArgs](
			enum("operation", "create", "update", "delete"),
			minimum("bookmarkId", 1),
		),
		Destructive: true,
		Handler:     manageHighlight,
	}
}

func manageHighlight(ctx context.Context, raw map[string]any, tc ToolContext) (*domain.ToolResult, error) {
	args, err := decodeArgs[highlightManageArgs](toolHighlightManage, raw)
	if err != nil {
		return nil, err
	}
	input := domain.HighlightInput{
		Text:  optionalString(args.Text),
		Note:  optionalString(args.Note),
		Color: optionalString(args.Color),
	}

	switch args.Operation {
	case "create":
		if args.BookmarkID == 0 {
			return nil, domain.MissingField(toolHighlightManage, args.Operation, "bookmarkId")
		}
		if strings.TrimSpace(args.Text) == "" {
			return nil, domain.MissingField(toolHighlightManage, args.Operation, "text")
		}
		created, err := tc.API.CreateHighlight(ctx, args.BookmarkID, input)
		if err != nil {
			return nil, err
		}
		return entityResult(toolHighlightManage, created)
	case "update":
		if args.ID == "" {
			return nil, domain.MissingField(toolHighlightManage, args.Operation, "id")
		}
		updated, err := tc.API.UpdateHighlight(ctx, args.ID, input)
		if err != nil {
			return nil, err
		}
		return entityResult(toolHighlightManage, updated)
	case "delete":
		if args.ID == "" {
			return nil, domain.MissingField(toolHighlightManage, args.Operation, "id")
		}
		if err := tc.API.DeleteHighlight(ctx, args.ID); err != nil {
			return nil, err
		}
		return deletedResult(toolHighlightManage)
	default:
		return nil, unknownOperation(toolHighlightManage, args.Operation)
	}
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
