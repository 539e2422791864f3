package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getInt64FromRecord(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if i, ok := val.(int); ok {
		return int64(i)
	}
	return 0
}

func getFloat64FromRecord(record *neo4j.Record, key string) float64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0.0
	}
	if f, ok := val.(float64); ok {
		return f
	}
	if i, ok := val.(int64); ok {
		return float64(i)
	}
	return 0.0
}

func getStringSliceFromRecord(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return []string{}
	}
	if slice, ok := val.([]interface{}); ok {
		result := make([]string, 0, len(slice))
		for _, v := range slice {
			if str, ok := v.(string); ok {
				result = append(result, str)
			}
		}
		return result
	}
	return []string{}
}

// convertProps rewrites driver temporal types into ISO strings so node and
// relationship property bags serialize cleanly to JSON.
func convertProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = convertValue(v)
	}
	return out
}

func convertValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case dbtype.Date:
		return val.Time().Format("2006-01-02")
	case dbtype.LocalDateTime:
		return val.Time().Format(time.RFC3339)
	case []interface{}:
		converted := make([]any, len(val))
		for i, item := range val {
			converted[i] = convertValue(item)
		}
		return converted
	case map[string]any:
		return convertProps(val)
	default:
		return v
	}
}

// displayLabel picks the visualization label for a node by its type:
// Analysis shows its id, Finding its title, Service its name.
func displayLabel(node dbtype.Node) string {
	if title, ok := node.Props["title"].(string); ok && title != "" {
		return title
	}
	if name, ok := node.Props["name"].(string); ok && name != "" {
		return name
	}
	if id, ok := node.Props["id"].(string); ok && id != "" {
		return id
	}
	return "Unknown"
}

func nodeType(node dbtype.Node) string {
	if len(node.Labels) > 0 {
		return node.Labels[0]
	}
	return "Unknown"
}
