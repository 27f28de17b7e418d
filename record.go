package scribe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Record is the structured form of a decoded payload: a nested mapping
// addressable by field path. Values are strings, numbers (json.Number),
// booleans, nil, nested map[string]any, or []any.
//
// Reserved paths: "message" holds raw text on fallback records, "tags" holds
// an ordered list of markers such as TagParseFailure.
type Record map[string]any

// segmentPattern extracts the segments of a bracketed field reference.
var segmentPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// splitPath breaks a field path into its segments. Bracketed form [a][b]
// and dotted form a.b are equivalent; a bare name is a single segment.
func splitPath(path string) []string {
	if strings.HasPrefix(path, "[") {
		matches := segmentPattern.FindAllStringSubmatch(path, -1)
		segments := make([]string, 0, len(matches))
		for _, m := range matches {
			segments = append(segments, m[1])
		}
		return segments
	}
	return strings.Split(path, ".")
}

// Get returns the value at the given field path.
// List elements are addressable by decimal index segments.
func (r Record) Get(path string) (any, bool) {
	var current any = map[string]any(r)
	for _, seg := range splitPath(path) {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			current = node[i]
		default:
			return nil, false
		}
	}
	return current, true
}

// Set stores a value at the given field path, creating intermediate maps as
// needed. An intermediate value that is not a map is replaced by one.
func (r Record) Set(path string, value any) {
	segments := splitPath(path)
	node := map[string]any(r)
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
}

// AddTag appends a marker to the record's tags list, creating it if absent.
// An existing scalar tags value is promoted to a list first.
func (r Record) AddTag(tag string) {
	switch tags := r["tags"].(type) {
	case nil:
		r["tags"] = []any{tag}
	case []any:
		r["tags"] = append(tags, tag)
	default:
		r["tags"] = []any{tags, tag}
	}
}

// stringify renders a field value for interpolation into a template string.
// Lists join their stringified elements with commas; maps render as compact
// JSON; nil renders empty.
func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case fmt.Stringer:
		return value.String()
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case []any:
		parts := make([]string, len(value))
		for i, el := range value {
			parts[i] = stringify(el)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", value)
	}
}
