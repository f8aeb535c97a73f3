package utils

import (
	"reflect"
	"strconv"
	"strings"
)

// jsonName returns the json key of a struct field, or "" when it is not serialized.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// UpdatesFromPtrDTO turns the set fields of a patch DTO into a gorm update map.
// Only non-nil pointer fields are included, keyed by json name; renames maps a
// json name to a different column, e.g. {"weight_kg": "weight"}.
func UpdatesFromPtrDTO(dto any, renames map[string]string) map[string]any {
	updates := make(map[string]any)
	s, ok := structOf(dto)
	if !ok {
		return updates
	}
	for _, sf := range reflect.VisibleFields(s.Type()) {
		if !sf.IsExported() || sf.Type.Kind() != reflect.Ptr {
			continue
		}
		fv := s.FieldByIndex(sf.Index)
		column := jsonName(sf)
		if fv.IsNil() || column == "" {
			continue
		}
		if alt := renames[column]; alt != "" {
			column = alt
		}
		updates[column] = fv.Elem().Interface()
	}
	return updates
}

// ParseIntDefault parses a non-negative int query value, falling back to def.
func ParseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return def
	}
	return n
}
