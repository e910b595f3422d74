// internal/dispatch/recipients.go
package dispatch

import (
	"fmt"

	"notification-engine/internal/models"
)

// recipientFor resolves the delivery address for a channel, preferring the
// explicit event context over payload fields. An empty return means the
// channel cannot be addressed for this occurrence.
func recipientFor(channel string, data, evCtx map[string]interface{}) string {
	switch channel {
	case models.ChannelEmail:
		return firstString(
			lookup(evCtx, "recipient_email"),
			lookup(data, "user", "email"),
			lookup(data, "order", "customer", "email"),
		)
	case models.ChannelSMS, models.ChannelWhatsApp:
		return firstString(
			lookup(evCtx, "recipient_phone"),
			lookup(data, "user", "phone"),
		)
	case models.ChannelPush:
		return firstString(
			lookup(evCtx, "device_token"),
			lookup(data, "user", "device_token"),
		)
	case models.ChannelInApp:
		return firstString(
			lookup(evCtx, "recipient_id"),
			lookup(data, "user", "id"),
		)
	}
	return ""
}

func lookup(m map[string]interface{}, path ...string) interface{} {
	var current interface{} = m
	for _, key := range path {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current = node[key]
	}
	return current
}

func firstString(candidates ...interface{}) string {
	for _, c := range candidates {
		switch v := c.(type) {
		case nil:
			continue
		case string:
			if v != "" {
				return v
			}
		case float64, int, int64:
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}
