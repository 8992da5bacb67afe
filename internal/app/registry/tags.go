package registry

import (
	"context"
	"fmt"

	"raindropmcp/internal/domain"
)

const (
	toolTagList   = "tag_list"
	toolTagManage = "tag_manage"
)

type tagListArgs struct {
	CollectionID int64 `json:"collectionId,omitempty" jsonschema:"collection id; omit to list tags across all collections"`
}

type tagManageArgs struct {
	Operation    string   `json:"operation" jsonschema:"rename, merge or delete"`
	CollectionID int64    `json:"collectionId" jsonschema:"collection scope; 0 applies to all collections"`
	TagNames     []string `json:"tagNames,omitempty" jsonschema:"tags to act on; rename uses the first entry"`
	NewName      string   `json:"newName,omitempty" jsonschema:"target tag name for rename and merge"`
}

func tagListTool() ToolDescriptor {
	return ToolDescriptor{
		Name:        toolTagList,
		Title:       "List tags",
		Description: "List tags with their bookmark counts, optionally scoped to one collection.",
		InputSchema: MustSchemaFor[tagListArgs](),
		ReadOnly:    true,
		Handler:     listTags,
	}
}

func listTags(ctx context.Context, raw map[string]any, tc ToolContext) (*domain.ToolResult, error) {
	args, err := decodeArgs[tagListArgs](toolTagList, raw)
	if err != nil {
		return nil, err
	}
	tags, err := tc.API.ListTags(ctx, args.CollectionID)
	if err != nil {
		return nil, err
	}
	content := make([]domain.Content, 0, len(tags)+1)
	content = append(content, domain.Text(fmt.Sprintf("Found %s", plural(len(tags), "tag", "tags"))))
	for _, tag := range tags {
		content = append(content, &domain.TextContent{
			Text: fmt.Sprintf("%s (%d)", tag.Name, tag.Count),
			Meta: map[string]any{"tag": tag.Name, "count": tag.Count},
		})
	}
	return &domain.ToolResult{Content: content}, nil
}

func tagManageTool() ToolDescriptor {
	return ToolDescriptor{
		Name:  toolTagManage,
		Title: "Manage tags",
		Description: "Rename, merge or delete tags within a collection. " +
			"rename requires tagNames[0] and newName; merge requires tagNames and newName; delete requires tagNames.",
		InputSchema: MustSchemaFor[tagManageArgs](enum("operation", "rename", "merge", "delete")),
		Destructive: true,
		Handler:     manageTags,
	}
}

func manageTags(ctx context.Context, raw map[string]any, tc ToolContext) (*domain.ToolResult, error) {
	args, err := decodeArgs[tagManageArgs](toolTagManage, raw)
	if err != nil {
		return nil, err
	}
	names := trimmedTags(args.TagNames)

	switch args.Operation {
	case "rename":
		if len(names) == 0 {
			return nil, domain.MissingField(toolTagManage, args.Operation, "tagNames")
		}
		if args.NewName == "" {
			return nil, domain.MissingField(toolTagManage, args.Operation, "newName")
		}
		if err := tc.API.RenameTag(ctx, args.CollectionID, names[0], args.NewName); err != nil {
			return nil, err
		}
		return entityResult(toolTagManage, domain.TagChange{CollectionID: args.CollectionID, From: names[:1], To: args.NewName})
	case "merge":
		if len(names) == 0 {
			return nil, domain.MissingField(toolTagManage, args.Operation, "tagNames")
		}
		if args.NewName == "" {
			return nil, domain.MissingField(toolTagManage, args.Operation, "newName")
		}
		if err := tc.API.MergeTags(ctx, args.CollectionID, names, args.NewName); err != nil {
			return nil, err
		}
		return entityResult(toolTagManage, domain.TagChange{CollectionID: args.CollectionID, From: names, To: args.NewName})
	case "delete":
		if len(names) == 0 {
			return nil, domain.MissingField(toolTagManage, args.Operation, "tagNames")
		}
		if err := tc.API.DeleteTags(ctx, args.CollectionID, names); err != nil {
			return nil, err
		}
		return deletedResult(toolTagManage)
	default:
		return nil, unknownOperation(toolTagManage, args.Operation)
	}
}
