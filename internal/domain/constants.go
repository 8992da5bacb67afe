package domain

import "strconv"

const (
	CollectionURIPrefix = "mcp://collection/"
	RaindropURIPrefix   = "mcp://raindrop/"
	UserProfileURI      = "mcp://user/profile"
	DiagnosticsURI      = "diagnostics://server"

	MIMETypeJSON = "application/json"
)

const (
	DefaultServerName         = "raindrop-mcp"
	DefaultServerDescription  = "Raindrop.io bookmarks, collections, tags and highlights over the Model Context Protocol"
	DefaultProtocolVersion    = "2025-06-18"
	DefaultRaindropBaseURL    = "https://api.raindrop.io/rest/v1"
	DefaultRaindropTimeout    = 30
	DefaultRequestsPerMinute  = 120
	DefaultRaindropMaxRetries = 2
	DefaultTransport          = TransportStdio
	DefaultHTTPAddr           = "127.0.0.1:3002"
	DefaultHTTPPath           = "/mcp"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "json"
	DefaultSearchPerPage      = 25
	MaxSearchPerPage          = 50
	DefaultListRaindropsLimit = 50
)

const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// CollectionURI returns the resource URI for a collection.
func CollectionURI(id int64) string {
	return CollectionURIPrefix + strconv.FormatInt(id, 10)
}

// RaindropURI returns the resource URI for a bookmark.
func RaindropURI(id int64) string {
	return RaindropURIPrefix + strconv.FormatInt(id, 10)
}
