// internal/catalog/metadata.go
package catalog

import (
	"encoding/json"
	"reflect"
	"strings"
)

// corruptedFallback is substituted when a merge produces a document that no
// longer validates. It is a fixed value so repeated corruption stays idempotent.
func corruptedFallback() map[string]interface{} {
	return map[string]interface{}{
		"_corrupted": true,
		"_reason":    "metadata merge produced an invalid document",
	}
}

// SanitizeMetadata normalizes an untrusted value into valid metadata: a plain
// key/value document with no circular references that is fully serializable.
// Strings that look like an encoded document are parsed; anything that fails
// any check normalizes to an empty document. Never returns nil.
func SanitizeMetadata(v interface{}) map[string]interface{} {
	switch m := v.(type) {
	case nil:
		return map[string]interface{}{}
	case map[string]interface{}:
		if !isValidDocument(m) {
			return map[string]interface{}{}
		}
		return m
	case string:
		trimmed := strings.TrimSpace(m)
		if !strings.HasPrefix(trimmed, "{") {
			return map[string]interface{}{}
		}
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
			return map[string]interface{}{}
		}
		return parsed
	default:
		return map[string]interface{}{}
	}
}

// MergeMetadata deep-merges incoming into existing without mutating either.
// Matching keys merge recursively when both sides hold nested documents;
// otherwise the incoming value overwrites the existing one.
func MergeMetadata(existing, incoming map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		ev, ok := out[k]
		if ok {
			em, eIsMap := ev.(map[string]interface{})
			im, iIsMap := v.(map[string]interface{})
			if eIsMap && iIsMap {
				out[k] = MergeMetadata(em, im)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// SafeMerge sanitizes both sides, merges, and re-validates the result. The
// returned changed flag is false when the merge left the sanitized existing
// value untouched, so callers can skip a pointless persist. The ok flag is
// false when the fallback document had to be substituted.
func SafeMerge(existing, incoming interface{}) (merged map[string]interface{}, changed bool, ok bool) {
	existingDoc := SanitizeMetadata(existing)
	incomingDoc := SanitizeMetadata(incoming)

	result := MergeMetadata(existingDoc, incomingDoc)
	if !isValidDocument(result) {
		return corruptedFallback(), true, false
	}

	return result, !reflect.DeepEqual(existingDoc, result), true
}

// isValidDocument reports whether m is cycle-free and serializable.
func isValidDocument(m map[string]interface{}) bool {
	if hasCycle(reflect.ValueOf(m), map[uintptr]bool{}) {
		return false
	}
	_, err := json.Marshal(m)
	return err == nil
}

// hasCycle walks maps and slices tracking visited container pointers.
func hasCycle(v reflect.Value, seen map[uintptr]bool) bool {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		ptr := v.Pointer()
		if seen[ptr] {
			return true
		}
		seen[ptr] = true
		for _, key := range v.MapKeys() {
			if hasCycle(v.MapIndex(key), seen) {
				return true
			}
		}
		delete(seen, ptr)
	case reflect.Slice:
		ptr := v.Pointer()
		if seen[ptr] {
			return true
		}
		seen[ptr] = true
		for i := 0; i < v.Len(); i++ {
			if hasCycle(v.Index(i), seen) {
				return true
			}
		}
		delete(seen, ptr)
	}

	return false
}
