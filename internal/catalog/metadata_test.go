// internal/catalog/metadata_test.go
package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeMetadata(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected map[string]interface{}
	}{
		{
			name:     "nil becomes empty document",
			input:    nil,
			expected: map[string]interface{}{},
		},
		{
			name:     "valid document passes through",
			input:    map[string]interface{}{"priority": "high"},
			expected: map[string]interface{}{"priority": "high"},
		},
		{
			name:     "encoded document string is parsed",
			input:    `{"priority": "high", "retries": 3}`,
			expected: map[string]interface{}{"priority": "high", "retries": float64(3)},
		},
		{
			name:     "malformed document string becomes empty",
			input:    `{"priority": `,
			expected: map[string]interface{}{},
		},
		{
			name:     "plain string becomes empty",
			input:    "not a document",
			expected: map[string]interface{}{},
		},
		{
			name:     "scalar becomes empty",
			input:    42,
			expected: map[string]interface{}{},
		},
		{
			name:     "list becomes empty",
			input:    []interface{}{"a", "b"},
			expected: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeMetadata(tt.input))
		})
	}
}

func TestSanitizeMetadataRejectsCycles(t *testing.T) {
	cyclic := map[string]interface{}{}
	cyclic["self"] = cyclic

	assert.Equal(t, map[string]interface{}{}, SanitizeMetadata(cyclic))
}

func TestMergeMetadataDeepMerge(t *testing.T) {
	existing := map[string]interface{}{
		"channels": map[string]interface{}{"email": true, "sms": false},
		"owner":    "platform",
	}
	incoming := map[string]interface{}{
		"channels": map[string]interface{}{"sms": true},
		"priority": "high",
	}

	merged := MergeMetadata(existing, incoming)

	assert.Equal(t, map[string]interface{}{
		"channels": map[string]interface{}{"email": true, "sms": true},
		"owner":    "platform",
		"priority": "high",
	}, merged)

	// Inputs must not be mutated.
	assert.Equal(t, false, existing["channels"].(map[string]interface{})["sms"])
}

func TestMergeMetadataScalarOverwritesDocument(t *testing.T) {
	existing := map[string]interface{}{"retry": map[string]interface{}{"max": 3}}
	incoming := map[string]interface{}{"retry": "disabled"}

	merged := MergeMetadata(existing, incoming)
	assert.Equal(t, "disabled", merged["retry"])
}

func TestSafeMerge(t *testing.T) {
	t.Run("identical incoming reports unchanged", func(t *testing.T) {
		existing := map[string]interface{}{"priority": "high"}

		merged, changed, ok := SafeMerge(existing, map[string]interface{}{"priority": "high"})

		require.True(t, ok)
		assert.False(t, changed)
		assert.Equal(t, existing, merged)
	})

	t.Run("new key reports changed", func(t *testing.T) {
		merged, changed, ok := SafeMerge(
			map[string]interface{}{"priority": "high"},
			map[string]interface{}{"owner": "sales"},
		)

		require.True(t, ok)
		assert.True(t, changed)
		assert.Equal(t, "sales", merged["owner"])
		assert.Equal(t, "high", merged["priority"])
	})

	t.Run("garbage incoming merges as empty", func(t *testing.T) {
		existing := map[string]interface{}{"priority": "high"}

		merged, changed, ok := SafeMerge(existing, "}{ not json")

		require.True(t, ok)
		assert.False(t, changed)
		assert.Equal(t, existing, merged)
	})

	t.Run("never returns nil document", func(t *testing.T) {
		merged, _, ok := SafeMerge(nil, nil)
		require.True(t, ok)
		assert.NotNil(t, merged)
		assert.Empty(t, merged)
	})
}
