package domain

// Content is one item of a tool response: TextContent or ResourceLinkContent.
type Content interface {
	isContent()
}

type TextContent struct {
	Text string
	Meta map[string]any
}

type ResourceLinkContent struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
	Meta        map[string]any
}

func (*TextContent) isContent()         {}
func (*ResourceLinkContent) isContent() {}

// ToolResult is the ordered, non-empty content produced by one tool call.
// Structured mirrors the canonical payload for clients that read structured output.
type ToolResult struct {
	Content    []Content
	Structured any
	IsError    bool
}

func Text(text string) *TextContent {
	return &TextContent{Text: text}
}

// ResourceContents is one entry of a resource read.
type ResourceContents struct {
	URI      string
	MIMEType string
	Text     string
}

type ResourceResult struct {
	Contents []ResourceContents
}

// ResourceDescriptor advertises a static resource or a dynamic URI pattern.
type ResourceDescriptor struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
	// Template marks a pattern such as mcp://collection/{id} that is resolved on read.
	Template bool
}
