// internal/normalize/normalize.go
package normalize

// Reconciles the upstream API's heterogeneous payload shapes
// (camelCase/PascalCase aliases, singleton-vs-array sub-records) into one
// canonical editable form, and strips server-owned bookkeeping before
// anything is sent back. All transforms are pure: they return new trees and
// never mutate their input.

import (
	"github.com/opencustoms/trade-portal/internal/models"
)

// ServerOwnedKeys are stripped from every object at every depth before
// normalized data re-enters editable state. Re-submitting a stale
// createdAt/updatedAt would corrupt the upstream's concurrency checks.
var ServerOwnedKeys = []string{"createdAt", "updatedAt", "CreatedAt", "UpdatedAt"}

// FirstDefined walks the alias list in order and returns the first value
// present on the object. The order is a fixed priority: when both "tin" and
// "Tin" are present with different values, the first-listed alias wins.
func FirstDefined(obj map[string]interface{}, aliases ...string) (interface{}, bool) {
	for _, alias := range aliases {
		if v, ok := obj[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// UnwrapSingleton handles sub-resources the upstream returns either as a
// bare object or an array of one: arrays yield their first element, empty
// arrays yield an empty record, bare objects pass through.
func UnwrapSingleton(v interface{}) models.Record {
	switch t := v.(type) {
	case nil:
		return models.Record{}
	case map[string]interface{}:
		return models.Record(t)
	case models.Record:
		return t
	case []interface{}:
		if len(t) == 0 {
			return models.Record{}
		}
		return UnwrapSingleton(t[0])
	case []models.Record:
		if len(t) == 0 {
			return models.Record{}
		}
		return t[0]
	default:
		return models.Record{}
	}
}

// ListOrEmpty coerces a list sub-resource to a slice of records, defaulting
// to an empty slice when absent or malformed.
func ListOrEmpty(v interface{}) []models.Record {
	switch t := v.(type) {
	case nil:
		return []models.Record{}
	case []models.Record:
		out := make([]models.Record, 0, len(t))
		for _, entry := range t {
			if entry != nil {
				out = append(out, entry)
			}
		}
		return out
	case []interface{}:
		out := make([]models.Record, 0, len(t))
		for _, entry := range t {
			if rec, ok := entry.(map[string]interface{}); ok {
				out = append(out, models.Record(rec))
			}
		}
		return out
	default:
		return []models.Record{}
	}
}

// OmitDeep returns a copy of the tree with the given keys removed from
// every object at every depth. Arrays are walked element-wise.
func OmitDeep(v interface{}, keys ...string) interface{} {
	drop := keySet(keys)
	return omitDeep(v, drop, false)
}

// Sanitize prepares an outbound payload: the same deep key strip as
// OmitDeep, plus dropping nil-valued object fields and nil array entries.
// The upstream never sees client bookkeeping it does not expect.
func Sanitize(v interface{}, keys ...string) interface{} {
	drop := keySet(keys)
	return omitDeep(v, drop, true)
}

func keySet(keys []string) map[string]bool {
	drop := make(map[string]bool, len(keys)+len(ServerOwnedKeys))
	for _, k := range ServerOwnedKeys {
		drop[k] = true
	}
	for _, k := range keys {
		drop[k] = true
	}
	return drop
}

func omitDeep(v interface{}, drop map[string]bool, dropNil bool) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return omitDeepMap(t, drop, dropNil)
	case models.Record:
		return models.Record(omitDeepMap(t, drop, dropNil))
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, entry := range t {
			if dropNil && entry == nil {
				continue
			}
			out = append(out, omitDeep(entry, drop, dropNil))
		}
		return out
	case []models.Record:
		out := make([]models.Record, 0, len(t))
		for _, entry := range t {
			if dropNil && entry == nil {
				continue
			}
			out = append(out, models.Record(omitDeepMap(entry, drop, dropNil)))
		}
		return out
	default:
		return v
	}
}

func omitDeepMap(m map[string]interface{}, drop map[string]bool, dropNil bool) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		if drop[k] {
			continue
		}
		if dropNil && v == nil {
			continue
		}
		out[k] = omitDeep(v, drop, dropNil)
	}
	return out
}

// PickFlags copies onto a fresh map only the template's keys whose incoming
// value is actually boolean-typed, so unknown or malformed upstream fields
// never pollute checkbox-group state.
func PickFlags(src map[string]interface{}, template map[string]bool) map[string]bool {
	out := make(map[string]bool, len(template))
	for key, def := range template {
		out[key] = def
		if v, ok := src[key]; ok {
			if b, ok := v.(bool); ok {
				out[key] = b
			}
		}
	}
	return out
}
