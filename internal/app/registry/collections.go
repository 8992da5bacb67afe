package registry

import (
	"context"
	"fmt"

	"raindropmcp/internal/domain"
)

const (
	toolCollectionList   = "collection_list"
	toolCollectionManage = "collection_manage"
)

type emptyArgs struct{}

type collectionManageArgs struct {
	Operation   string `json:"operation" jsonschema:"create, update or delete"`
	ID          int64  `json:"id,omitempty" jsonschema:"collection id; required for update and delete"`
	Title       string `json:"title,omitempty" jsonschema:"collection title; required for create"`
	Color       string `json:"color,omitempty" jsonschema:"hex color such as #1a73e8"`
	Description string `json:"description,omitempty" jsonschema:"collection description"`
}

func collectionListTool() ToolDescriptor {
	return ToolDescriptor{
		Name:        toolCollectionList,
		Title:       "List collections",
		Description: "List all Raindrop collections. Returns a summary and one mcp://collection/{id} resource link per collection.",
		InputSchema: MustSchemaFor[emptyArgs](),
		ReadOnly:    true,
		Handler:     listCollections,
	}
}

func listCollections(ctx context.Context, _ map[string]any, tc ToolContext) (*domain.ToolResult, error) {
	collections, err := tc.API.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	links := make([]*domain.ResourceLinkContent, 0, len(collections))
	for _, c := range collections {
		links = append(links, collectionLink(c))
	}
	return linkResult(fmt.Sprintf("Found %s", plural(len(collections), "collection", "collections")), links), nil
}

func collectionManageTool() ToolDescriptor {
	return ToolDescriptor{
		Name:  toolCollectionManage,
		Title: "Manage collection",
		Description: "Create, update or delete a collection. " +
			"create requires title; update and delete require id. Deleting moves contained bookmarks to Trash.",
		InputSchema: MustSchemaFor[collectionManageArgs](enum("operation", "create", "update", "delete"), minimum("id", 1)),
		Destructive: true,
		Handler:     manageCollection,
	}
}

func manageCollection(ctx context.Context, raw map[string]any, tc ToolContext) (*domain.ToolResult, error) {
	args, err := decodeArgs[collectionManageArgs](toolCollectionManage, raw)
	if err != nil {
		return nil, err
	}

	input := domain.CollectionInput{
		Title:       optionalString(args.Title),
		Color:       optionalString(args.Color),
		Description: optionalString(args.Description),
	}

	switch args.Operation {
	case "create":
		if args.Title == "" {
			return nil, domain.MissingField(toolCollectionManage, args.Operation, "title")
		}
		created, err := tc.API.CreateCollection(ctx, input)
		if err != nil {
			return nil, err
		}
		return entityResult(toolCollectionManage, created)
	case "update":
		if args.ID == 0 {
			return nil, domain.MissingField(toolCollectionManage, args.Operation, "id")
		}
		updated, err := tc.API.UpdateCollection(ctx, args.ID, input)
		if err != nil {
			return nil, err
		}
		return entityResult(toolCollectionManage, updated)
	case "delete":
		if args.ID == 0 {
			return nil, domain.MissingField(toolCollectionManage, args.Operation, "id")
		}
		if err := tc.API.DeleteCollection(ctx, args.ID); err != nil {
			return nil, err
		}
		return deletedResult(toolCollectionManage)
	default:
		return nil, unknownOperation(toolCollectionManage, args.Operation)
	}
}

func unknownOperation(tool, operation string) error {
	if operation == "" {
		return domain.E(domain.CodeInvalidArgument, tool, "operation is required", nil).WithMeta("field", "operation")
	}
	return domain.E(domain.CodeInvalidArgument, tool, fmt.Sprintf("unsupported operation %q", operation), nil).
		WithMeta("operation", operation)
}
