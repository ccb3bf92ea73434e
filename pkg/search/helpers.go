package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ragno-ai/ragno/pkg/types"
)

// ResultSetToContextString reformats a result set into a single string to
// pass directly to an LLM as grounding context. Entities and textual
// elements are presented separately; relationship context rides along with
// its candidate.
func ResultSetToContextString(results *types.ResultSet) (string, error) {
	var entityJSON []map[string]any
	var passageJSON []map[string]any

	for _, c := range results.Candidates {
		switch c.Type {
		case types.EntityNodeType, types.AttributeNodeType, types.CommunityNodeType:
			entry := map[string]any{
				"name":    c.Label,
				"summary": c.Content,
				"score":   c.Score,
			}
			if len(c.Context) > 0 {
				entry["relations"] = relationStrings(c.Context)
			}
			entityJSON = append(entityJSON, entry)
		default:
			passageJSON = append(passageJSON, map[string]any{
				"content": firstNonEmpty(c.Content, c.Label),
				"score":   c.Score,
			})
		}
	}

	entityStr, err := toPromptJSON(entityJSON)
	if err != nil {
		return "", fmt.Errorf("marshaling entity context: %w", err)
	}
	passageStr, err := toPromptJSON(passageJSON)
	if err != nil {
		return "", fmt.Errorf("marshaling passage context: %w", err)
	}

	return fmt.Sprintf(`ENTITIES and PASSAGES are graph memory relevant to the current query.

<ENTITIES>
%s
</ENTITIES>
<PASSAGES>
%s
</PASSAGES>`, entityStr, passageStr), nil
}

func relationStrings(edges []types.Edge) []string {
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, fmt.Sprintf("%s -[%s]-> %s", e.Source, e.Relation, e.Target))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func toPromptJSON(v []map[string]any) (string, error) {
	if len(v) == 0 {
		return "[]", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// The block is read by a model, not a browser; keep relation arrows
	// literal instead of > escapes.
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
