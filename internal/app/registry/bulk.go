package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"raindropmcp/internal/domain"
)

const toolBulkEdit = "bulk_edit_raindrops"

type bulkEditArgs struct {
	CollectionID int64    `json:"collectionId" jsonschema:"collection whose bookmarks are edited"`
	IDs          []int64  `json:"ids,omitempty" jsonschema:"bookmark ids to edit; omit to edit every bookmark in the collection"`
	Important    *bool    `json:"important,omitempty" jsonschema:"mark or unmark as important"`
	Tags         []string `json:"tags,omitempty" jsonschema:"tags to append; an empty list removes all tags"`
	Media        []string `json:"media,omitempty" jsonschema:"media URLs to set; an empty list removes all media"`
	Cover        string   `json:"cover,omitempty" jsonschema:"cover image URL, or <screenshot> to capture one"`
	Collection   int64    `json:"collection,omitempty" jsonschema:"move bookmarks to this collection id"`
	Nested       bool     `json:"nested,omitempty" jsonschema:"also edit bookmarks in nested collections"`
}

func bulkEditTool() ToolDescriptor {
	return ToolDescriptor{
		Name:  toolBulkEdit,
		Title: "Bulk edit bookmarks",
		Description: "Apply one batched edit (importance, tags, media, cover or target collection) to many bookmarks of a collection. " +
			"A failure reported by Raindrop is returned as an error result instead of failing the call.",
		InputSchema: MustSchemaFor[bulkEditArgs](),
		Destructive: true,
		Handler:     bulkEdit,
	}
}

// bulkEdit converts collaborator failures into an isError result; every
// other tool propagates them.
func bulkEdit(ctx context.Context, raw map[string]any, tc ToolContext) (*domain.ToolResult, error) {
	args, err := decodeArgs[bulkEditArgs](toolBulkEdit, raw)
	if err != nil {
		return nil, err
	}

	edit := domain.BulkEdit{
		IDs:       args.IDs,
		Important: args.Important,
		Cover:     optionalString(args.Cover),
		Nested:    args.Nested,
	}
	if has(raw, "tags") {
		edit.Tags = trimmedTags(args.Tags)
	}
	if has(raw, "media") {
		edit.Media = make([]domain.MediaRef, 0, len(args.Media))
		for _, link := range args.Media {
			edit.Media = append(edit.Media, domain.MediaRef{Link: link})
		}
	}
	if args.Collection != 0 {
		edit.Collection = &domain.Ref{ID: args.Collection}
	}

	result, err := tc.API.BulkEditRaindrops(ctx, args.CollectionID, edit)
	if err != nil {
		tc.logger().Warn("bulk edit failed", zap.Int64("collectionId", args.CollectionID), zap.Error(err))
		return bulkEditFailure(err.Error()), nil
	}
	if !result.Result {
		msg := result.ErrorMessage
		if msg == "" {
			msg = "raindrop reported failure"
		}
		return bulkEditFailure(msg), nil
	}

	scope := "all bookmarks"
	if len(args.IDs) > 0 {
		scope = plural(len(args.IDs), "bookmark", "bookmarks")
	}
	summary := fmt.Sprintf("Bulk edit applied to %s in collection %d", scope, args.CollectionID)
	if result.Modified > 0 {
		summary = fmt.Sprintf("%s (%d modified)", summary, result.Modified)
	}
	return &domain.ToolResult{
		Content:    []domain.Content{domain.Text(summary)},
		Structured: result,
	}, nil
}

func bulkEditFailure(msg string) *domain.ToolResult {
	return &domain.ToolResult{
		Content: []domain.Content{domain.Text("Bulk edit failed: " + msg)},
		IsError: true,
	}
}
