// internal/conditions/extractors.go
package conditions

import (
	"context"
	"strings"
	"time"
)

// extractorFunc derives a condition's actual value from the event payload and
// context. A nil return means the value could not be resolved.
type extractorFunc func(e *Evaluator, ctx context.Context, data, evCtx map[string]interface{}) interface{}

// extractors is the closed table of recognized condition keys. Keys outside
// this table resolve to nil.
var extractors = map[string]extractorFunc{
	"is_client":            extractIsClient,
	"user_role":            extractUserRole,
	"order_customer_email": extractOrderCustomerEmail,
	"order_status":         extractOrderStatus,
	"appointment_status":   extractAppointmentStatus,
	"appointment_is_today": extractAppointmentIsToday,
	"not_same_day":         extractNotSameDay,
	"event_source":         extractEventSource,
}

func (e *Evaluator) extract(ctx context.Context, key string, data, evCtx map[string]interface{}) interface{} {
	fn, ok := extractors[key]
	if !ok {
		e.log.Debug("unrecognized condition key", map[string]interface{}{"key": key})
		return nil
	}
	return fn(e, ctx, data, evCtx)
}

func extractIsClient(_ *Evaluator, _ context.Context, data, evCtx map[string]interface{}) interface{} {
	if v, ok := evCtx["is_client"]; ok {
		return v
	}
	if t, ok := evCtx["user_type"].(string); ok {
		return strings.EqualFold(t, "client")
	}
	if v, ok := dig(data, "user", "is_client"); ok {
		return v
	}
	return nil
}

func extractUserRole(e *Evaluator, ctx context.Context, data, evCtx map[string]interface{}) interface{} {
	if v, ok := evCtx["user_role"]; ok {
		return v
	}
	if v, ok := dig(data, "user", "role"); ok {
		return v
	}

	// Secondary lookup by user id when the role is not embedded.
	userID, _ := evCtx["user_id"].(string)
	if userID == "" {
		if v, ok := dig(data, "user", "id"); ok {
			userID, _ = v.(string)
		}
	}
	if userID == "" || e.roles == nil {
		return nil
	}
	role, err := e.roles.RoleByUserID(ctx, userID)
	if err != nil || role == "" {
		return nil
	}
	return role
}

func extractOrderCustomerEmail(_ *Evaluator, _ context.Context, data, _ map[string]interface{}) interface{} {
	if v, ok := dig(data, "order", "customer", "email"); ok {
		return v
	}
	if v, ok := dig(data, "order", "customer_email"); ok {
		return v
	}
	return nil
}

func extractOrderStatus(_ *Evaluator, _ context.Context, data, _ map[string]interface{}) interface{} {
	if v, ok := dig(data, "order", "status"); ok {
		return v
	}
	return nil
}

func extractAppointmentStatus(_ *Evaluator, _ context.Context, data, _ map[string]interface{}) interface{} {
	if v, ok := dig(data, "appointment", "status"); ok {
		return v
	}
	return nil
}

func extractAppointmentIsToday(e *Evaluator, _ context.Context, data, _ map[string]interface{}) interface{} {
	when, ok := appointmentDate(data)
	if !ok {
		return nil
	}
	return sameDay(when, e.now())
}

func extractNotSameDay(e *Evaluator, _ context.Context, data, _ map[string]interface{}) interface{} {
	when, ok := appointmentDate(data)
	if !ok {
		return nil
	}
	return !sameDay(when, e.now())
}

func extractEventSource(_ *Evaluator, _ context.Context, _, evCtx map[string]interface{}) interface{} {
	if v, ok := evCtx["source"]; ok {
		return v
	}
	return nil
}

// appointmentDate resolves the appointment's date from the payload, trying
// the common field names and layouts.
func appointmentDate(data map[string]interface{}) (time.Time, bool) {
	for _, field := range []string{"date", "starts_at", "scheduled_at"} {
		v, ok := dig(data, "appointment", field)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// dig walks nested maps along the given path.
func dig(m map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = m
	for _, key := range path {
		node, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
