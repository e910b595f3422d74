// internal/template/renderer_test.go
package template

import (
	"testing"

	"notification-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	data := map[string]interface{}{
		"user": map[string]interface{}{
			"name":  "Ada",
			"email": "ada@example.com",
		},
		"order": map[string]interface{}{
			"number": float64(1042),
			"total":  99.5,
		},
	}

	tests := []struct {
		name     string
		tmpl     string
		expected string
	}{
		{
			name:     "plain text untouched",
			tmpl:     "Hello there",
			expected: "Hello there",
		},
		{
			name:     "simple substitution",
			tmpl:     "Hello {{user.name}}",
			expected: "Hello Ada",
		},
		{
			name:     "whitespace inside delimiters",
			tmpl:     "Hello {{ user.name }}",
			expected: "Hello Ada",
		},
		{
			name:     "deep path",
			tmpl:     "Order #{{order.number}} for {{user.email}}",
			expected: "Order #1042 for ada@example.com",
		},
		{
			name:     "non-string values are formatted",
			tmpl:     "Total: {{order.total}}",
			expected: "Total: 99.5",
		},
		{
			name:     "unresolved placeholder stays literal",
			tmpl:     "Hi {{user.name}}, code {{user.promo_code}}",
			expected: "Hi Ada, code {{user.promo_code}}",
		},
		{
			name:     "path through non-map stays literal",
			tmpl:     "{{user.name.first}}",
			expected: "{{user.name.first}}",
		},
		{
			name:     "empty template",
			tmpl:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.tmpl, data))
		})
	}
}

func TestRenderByChannel(t *testing.T) {
	tmpl := &models.Template{
		Name: "order_confirmation",
		Channels: map[string]*models.ChannelContent{
			"email": {
				Subject: "Order {{order.number}} confirmed",
				Body:    "Thanks {{user.name}}!",
			},
			"sms": {
				Message: "Order {{order.number}} confirmed",
			},
		},
	}
	data := map[string]interface{}{
		"user":  map[string]interface{}{"name": "Ada"},
		"order": map[string]interface{}{"number": "1042"},
	}

	email := RenderByChannel(tmpl, data, "email")
	require.NotNil(t, email)
	assert.Equal(t, "Order 1042 confirmed", email.Subject)
	assert.Equal(t, "Thanks Ada!", email.Body)

	// The template's own content block must stay unrendered.
	assert.Equal(t, "Order {{order.number}} confirmed", tmpl.Channels["email"].Subject)

	assert.Nil(t, RenderByChannel(tmpl, data, "push"), "missing channel block yields nil")
	assert.Nil(t, RenderByChannel(nil, data, "email"))
}

func TestExtractPlaceholders(t *testing.T) {
	paths := ExtractPlaceholders("{{user.name}} ordered {{order.number}} ({{user.name}})")
	assert.Equal(t, []string{"user.name", "order.number"}, paths)

	assert.Empty(t, ExtractPlaceholders("no placeholders here"))
}
