// internal/template/renderer.go

// Package template renders per-channel content blocks by substituting
// {{dotted.path}} placeholders from an event payload, and validates templates
// at authoring time against the declared variable catalog.
package template

import (
	"fmt"
	"regexp"
	"strings"

	"notification-engine/internal/models"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+(?:\.[a-zA-Z0-9_]+)*)\s*\}\}`)

// Render substitutes every resolvable {{dotted.path}} placeholder in tmpl from
// data. An unresolved path leaves the literal placeholder text untouched,
// which distinguishes "intentionally blank" from "unknown".
func Render(tmpl string, data map[string]interface{}) string {
	if tmpl == "" || !strings.Contains(tmpl, "{{") {
		return tmpl
	}

	return placeholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		path := placeholderRe.FindStringSubmatch(match)[1]
		v, ok := resolvePath(data, path)
		if !ok || v == nil {
			return match
		}
		return stringify(v)
	})
}

// RenderByChannel renders the channel's content block field by field, or
// returns nil when the template has no block for that channel.
func RenderByChannel(t *models.Template, data map[string]interface{}, channel string) *models.ChannelContent {
	if t == nil {
		return nil
	}
	block, ok := t.Channels[channel]
	if !ok || block == nil {
		return nil
	}

	out := block.Clone()
	out.Message = Render(block.Message, data)
	out.Subject = Render(block.Subject, data)
	out.Title = Render(block.Title, data)
	out.Body = Render(block.Body, data)
	out.HTML = Render(block.HTML, data)
	out.Text = Render(block.Text, data)
	return out
}

// ExtractPlaceholders returns the unique placeholder paths in tmpl, in order
// of first appearance.
func ExtractPlaceholders(tmpl string) []string {
	matches := placeholderRe.FindAllStringSubmatch(tmpl, -1)
	seen := map[string]bool{}
	var out []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// resolvePath walks data along a dotted path.
func resolvePath(data map[string]interface{}, path string) (interface{}, bool) {
	var cur interface{} = data
	for _, seg := range strings.Split(path, ".") {
		node, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = node[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
