package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// fieldMaps caches JSON tag -> struct field index mappings per type
var fieldMaps sync.Map

func getFieldMap(t reflect.Type) map[string]int {
	if cached, ok := fieldMaps.Load(t); ok {
		return cached.(map[string]int)
	}
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		m[name] = i
	}
	fieldMaps.Store(t, m)
	return m
}

// UnmarshalJSON accepts both native and string-encoded booleans. HTML forms
// and some wallet-adapter UIs post {"listed": "true"}.
func (r *SetListingRequest) UnmarshalJSON(data []byte) error {
	// Alias prevents infinite recursion
	type Alias SetListingRequest
	return flexUnmarshal(data, (*Alias)(r))
}

// flexUnmarshal decodes data into the struct pointed to by v. The fast path is
// the standard decoder; on a type mismatch it falls back to field-by-field
// decoding with string-to-native coercion.
func flexUnmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err == nil {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	// The failed fast path may have set fields before hitting the bad one.
	rv := reflect.ValueOf(v).Elem()
	rv.Set(reflect.Zero(rv.Type()))
	fieldMap := getFieldMap(rv.Type())

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := rv.Field(idx)
		if !fv.CanSet() {
			continue
		}

		// Try direct unmarshal first
		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		// Value is a JSON string but target is bool, coerce
		if len(rawVal) > 1 && rawVal[0] == '"' {
			var s string
			if err := json.Unmarshal(rawVal, &s); err != nil {
				continue
			}
			if s == "" {
				continue
			}
			if err := coerceStringToField(fv, s); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			continue
		}
		return fmt.Errorf("field %q: unsupported value %s", key, rawVal)
	}

	return nil
}

// coerceStringToField parses a string into a bool or *bool field.
func coerceStringToField(fv reflect.Value, s string) error {
	if fv.Kind() == reflect.Ptr {
		elem := reflect.New(fv.Type().Elem())
		if err := coerceStringToField(elem.Elem(), s); err != nil {
			return err
		}
		fv.Set(elem)
		return nil
	}
	if fv.Kind() != reflect.Bool {
		return fmt.Errorf("cannot coerce string into %s", fv.Kind())
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	fv.SetBool(b)
	return nil
}
