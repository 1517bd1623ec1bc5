package dag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveInputsLiteralPassthrough(t *testing.T) {
	resolved, err := resolveInputs(map[string]any{
		"text":  "hello",
		"count": 3,
		"ratio": 0.5,
	}, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "hello", resolved["text"])
	assert.Equal(t, 3, resolved["count"])
	assert.Equal(t, 0.5, resolved["ratio"])
}

func TestResolveInputsReferenceWalk(t *testing.T) {
	runCtx := map[string]any{
		"scorer": map[string]any{
			"result": map[string]any{"score": 0.9},
		},
	}
	resolved, err := resolveInputs(map[string]any{"score": "$scorer.result.score"}, runCtx)
	require.NoError(t, err)
	assert.Equal(t, 0.9, resolved["score"])
}

func TestResolveInputsNestedContainers(t *testing.T) {
	runCtx := map[string]any{"lead": map[string]any{"name": "Acme"}}
	resolved, err := resolveInputs(map[string]any{
		"payload": map[string]any{
			"who":  "$lead.name",
			"tags": []any{"$lead.name", "literal"},
		},
	}, runCtx)
	require.NoError(t, err)

	payload := resolved["payload"].(map[string]any)
	assert.Equal(t, "Acme", payload["who"])
	assert.Equal(t, []any{"Acme", "literal"}, payload["tags"])
}

func TestResolveInputsUnresolvedReference(t *testing.T) {
	_, err := resolveInputs(map[string]any{"v": "$missing.path"}, map[string]any{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedReference), "expected ErrUnresolvedReference, got %v", err)
}

func TestResolveInputsReferenceThroughScalarFails(t *testing.T) {
	runCtx := map[string]any{"n": 42}
	_, err := resolveInputs(map[string]any{"v": "$n.deeper"}, runCtx)
	assert.True(t, errors.Is(err, ErrUnresolvedReference))
}

func TestResolveInputsBareSigilFails(t *testing.T) {
	_, err := resolveInputs(map[string]any{"v": "$"}, map[string]any{"x": 1})
	assert.True(t, errors.Is(err, ErrUnresolvedReference))
}
