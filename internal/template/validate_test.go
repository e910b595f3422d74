// internal/template/validate_test.go
package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		tmpl      string
		declared  []string
		valid     bool
		errCount  int
		warnCount int
		variables []string
	}{
		{
			name:      "known variables pass",
			tmpl:      "Hi {{user.name}}, order {{order.number}}",
			valid:     true,
			variables: []string{"user.name", "order.number"},
		},
		{
			name:     "unknown variable is an error",
			tmpl:     "Hi {{user.shoe_size}}",
			valid:    false,
			errCount: 1,
		},
		{
			name:      "metadata namespace is open",
			tmpl:      "Ref {{metadata.campaign.id}} and {{custom.anything}}",
			valid:     true,
			variables: []string{"metadata.campaign.id", "custom.anything"},
		},
		{
			name:     "unbalanced delimiters are a syntax error",
			tmpl:     "Hi {{user.name}, welcome",
			valid:    false,
			errCount: 1,
		},
		{
			name:      "unused declared variable is a warning only",
			tmpl:      "Hi {{user.name}}",
			declared:  []string{"user.name", "order.number"},
			valid:     true,
			warnCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(tt.tmpl, tt.declared)

			assert.Equal(t, tt.valid, r.IsValid)
			assert.Len(t, r.Errors, tt.errCount)
			assert.Len(t, r.Warnings, tt.warnCount)
			if tt.variables != nil {
				assert.Equal(t, tt.variables, r.Variables)
			}
		})
	}
}

func TestValidateChannels(t *testing.T) {
	channels := map[string]map[string]string{
		"email": {
			"subject": "Order {{order.number}}",
			"body":    "Hi {{user.nickname}}",
		},
		"sms": {
			"message": "Order {{order.number}} ready",
		},
	}

	r := ValidateChannels(channels, []string{"order.number", "user.email"})

	assert.False(t, r.IsValid)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "email.body")
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "user.email")
}

func TestValidateDefinition(t *testing.T) {
	t.Run("well-formed definition", func(t *testing.T) {
		r, err := ValidateDefinition(map[string]interface{}{
			"name": "order_confirmation",
			"channels": map[string]interface{}{
				"email": map[string]interface{}{
					"subject": "Order confirmed",
					"body":    "Thanks!",
				},
			},
		})
		require.NoError(t, err)
		assert.True(t, r.IsValid)
		assert.Empty(t, r.Errors)
	})

	t.Run("unknown channel rejected", func(t *testing.T) {
		r, err := ValidateDefinition(map[string]interface{}{
			"name": "order_confirmation",
			"channels": map[string]interface{}{
				"carrier_pigeon": map[string]interface{}{"message": "coo"},
			},
		})
		require.NoError(t, err)
		assert.False(t, r.IsValid)
	})

	t.Run("missing channels rejected", func(t *testing.T) {
		r, err := ValidateDefinition(map[string]interface{}{
			"name": "order_confirmation",
		})
		require.NoError(t, err)
		assert.False(t, r.IsValid)
	})

	t.Run("uppercase name rejected", func(t *testing.T) {
		r, err := ValidateDefinition(map[string]interface{}{
			"name": "OrderConfirmation",
			"channels": map[string]interface{}{
				"sms": map[string]interface{}{"message": "hi"},
			},
		})
		require.NoError(t, err)
		assert.False(t, r.IsValid)
	})
}
