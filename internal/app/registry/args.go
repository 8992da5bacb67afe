package registry

import (
	"encoding/json"
	"strings"

	"raindropmcp/internal/domain"
)

// decodeArgs converts the raw argument map into a typed struct.
func decodeArgs[T any](tool string, args map[string]any) (T, error) {
	var out T
	if len(args) == 0 {
		return out, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return out, domain.E(domain.CodeInvalidArgument, tool, "encode arguments", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, domain.E(domain.CodeInvalidArgument, tool, "decode arguments", err)
	}
	return out, nil
}

// has reports whether the caller supplied key, even with a zero value.
func has(args map[string]any, key string) bool {
	v, ok := args[key]
	return ok && v != nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func trimmedTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
