package registry

import (
	"encoding/json"
	"fmt"

	"raindropmcp/internal/domain"
)

// entityResult renders a created/updated entity or a delete outcome as one
// JSON text item, mirrored in structured content.
func entityResult(tool string, payload any) (*domain.ToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.E(domain.CodeInternal, tool, "encode result", err)
	}
	return &domain.ToolResult{
		Content:    []domain.Content{domain.Text(string(raw))},
		Structured: payload,
	}, nil
}

func deletedResult(tool string) (*domain.ToolResult, error) {
	return entityResult(tool, domain.Deleted{Deleted: true})
}

// linkResult is the list/search shape: one summary text item followed by one
// resource link per row.
func linkResult(summary string, links []*domain.ResourceLinkContent) *domain.ToolResult {
	content := make([]domain.Content, 0, len(links)+1)
	content = append(content, domain.Text(summary))
	for _, link := range links {
		content = append(content, link)
	}
	return &domain.ToolResult{Content: content}
}

func collectionLink(c domain.Collection) *domain.ResourceLinkContent {
	meta := map[string]any{"id": c.ID, "count": c.Count}
	if c.Parent != nil {
		meta["parentId"] = c.Parent.ID
	}
	return &domain.ResourceLinkContent{
		URI:         domain.CollectionURI(c.ID),
		Name:        c.Title,
		Description: fmt.Sprintf("%d bookmarks", c.Count),
		MIMEType:    domain.MIMETypeJSON,
		Meta:        meta,
	}
}

func raindropLink(r domain.Raindrop) *domain.ResourceLinkContent {
	name := r.Title
	if name == "" {
		name = r.Link
	}
	description := r.Excerpt
	if description == "" {
		description = r.Link
	}
	meta := map[string]any{"id": r.ID, "link": r.Link}
	if id := r.CollectionID(); id != 0 {
		meta["collectionId"] = id
	}
	if len(r.Tags) > 0 {
		meta["tags"] = r.Tags
	}
	if r.Important {
		meta["important"] = true
	}
	return &domain.ResourceLinkContent{
		URI:         domain.RaindropURI(r.ID),
		Name:        name,
		Description: description,
		MIMEType:    domain.MIMETypeJSON,
		Meta:        meta,
	}
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}
