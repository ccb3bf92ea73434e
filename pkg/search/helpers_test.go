package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragno-ai/ragno/pkg/types"
)

func TestResultSetToContextStringSeparatesEntitiesAndPassages(t *testing.T) {
	results := &types.ResultSet{
		Candidates: []*types.Candidate{
			{
				ID: "e1", Type: types.EntityNodeType, Label: "Beer Brewing",
				Content: "Making beer at home", Score: 1.0,
				Context: []types.Edge{{Source: "e1", Target: "e2", Relation: "relatesTo"}},
			},
			{
				ID: "u1", Type: types.UnitNodeType,
				Content: "Brewing dates back millennia", Score: 0.8,
			},
		},
	}

	block, err := ResultSetToContextString(results)
	require.NoError(t, err)

	entitiesStart := strings.Index(block, "<ENTITIES>")
	entitiesEnd := strings.Index(block, "</ENTITIES>")
	passagesStart := strings.Index(block, "<PASSAGES>")
	require.True(t, entitiesStart >= 0 && entitiesEnd > entitiesStart && passagesStart > entitiesEnd)

	entities := block[entitiesStart:entitiesEnd]
	passages := block[passagesStart:]
	assert.Contains(t, entities, "Beer Brewing")
	assert.Contains(t, entities, "e1 -[relatesTo]-> e2")
	assert.NotContains(t, block, `\u003e`)
	assert.Contains(t, passages, "Brewing dates back millennia")
	assert.NotContains(t, passages, "Beer Brewing")
}

func TestResultSetToContextStringEmpty(t *testing.T) {
	block, err := ResultSetToContextString(&types.ResultSet{Candidates: []*types.Candidate{}})
	require.NoError(t, err)
	assert.Contains(t, block, "<ENTITIES>\n[]")
	assert.Contains(t, block, "<PASSAGES>\n[]")
}
