// internal/conditions/evaluator.go

// Package conditions evaluates listener condition maps against an event's
// payload and context. Condition keys resolve through a fixed, closed
// extraction table; all keys must pass for a listener to be eligible.
package conditions

import (
	"context"
	"reflect"
	"strings"
	"time"

	"notification-engine/internal/common/logger"
)

// RoleResolver looks up a user's role when it is not already embedded in the
// event context or payload.
type RoleResolver interface {
	RoleByUserID(ctx context.Context, userID string) (string, error)
}

type Evaluator struct {
	log   logger.Logger
	roles RoleResolver

	// now is injectable for the date-derived extractors.
	now func() time.Time
}

func NewEvaluator(roles RoleResolver, log logger.Logger) *Evaluator {
	return &Evaluator{
		log:   log.WithFields(map[string]interface{}{"component": "condition-evaluator"}),
		roles: roles,
		now:   time.Now,
	}
}

// Evaluate reports whether every condition passes against the payload and
// context. Empty or absent conditions always pass. Unknown condition keys
// resolve to a nil actual value, which fails only when an expected value is
// present.
func (e *Evaluator) Evaluate(ctx context.Context, conds, data, evCtx map[string]interface{}) bool {
	if len(conds) == 0 {
		return true
	}

	for key, expected := range conds {
		actual := e.extract(ctx, key, data, evCtx)
		if !compare(expected, actual) {
			return false
		}
	}
	return true
}

// compare applies the fixed precedence: expected absent passes; actual absent
// fails; list expected intersects; bool expected matches exactly; textual
// pairs compare case-insensitively; everything else compares strictly.
func compare(expected, actual interface{}) bool {
	if expected == nil {
		return true
	}
	if actual == nil {
		return false
	}

	switch exp := expected.(type) {
	case []interface{}:
		return intersects(exp, actual)
	case []string:
		generic := make([]interface{}, len(exp))
		for i, s := range exp {
			generic[i] = s
		}
		return intersects(generic, actual)
	case bool:
		b, ok := actual.(bool)
		return ok && b == exp
	case string:
		if s, ok := actual.(string); ok {
			return strings.EqualFold(s, exp)
		}
		return false
	default:
		return reflect.DeepEqual(expected, actual)
	}
}

// intersects reports whether actual (scalar or list) shares an element with
// the expected list.
func intersects(expected []interface{}, actual interface{}) bool {
	actuals, ok := actual.([]interface{})
	if !ok {
		actuals = []interface{}{actual}
	}

	for _, want := range expected {
		for _, got := range actuals {
			if scalarEqual(want, got) {
				return true
			}
		}
	}
	return false
}

func scalarEqual(a, b interface{}) bool {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.EqualFold(as, bs)
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}
