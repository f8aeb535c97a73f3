package utils

import (
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
)

func reflectTypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func normalizeValue(v reflect.Value) {
	if !v.CanSet() {
		return
	}
	if v.Type() == decimalType {
		v.Set(reflect.ValueOf(RoundMoney(v.Interface().(decimal.Decimal))))
		return
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(strings.TrimSpace(v.String()))
	case reflect.Float64:
		v.SetFloat(Round2(v.Float()))
	}
}

// NormalizePtrDTO trims *string fields and rounds *float64 and *decimal.Decimal
// fields on a pointer-to-struct DTO. Nil fields stay nil so GORM won't update them.
func NormalizePtrDTO(dto any) {
	s, ok := structOf(dto)
	if !ok {
		return
	}
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if f.Kind() != reflect.Ptr || f.IsNil() {
			continue
		}
		normalizeValue(f.Elem())
	}
}

// NormalizeDTO does the same for the non-pointer fields of a create DTO.
func NormalizeDTO(dto any) {
	s, ok := structOf(dto)
	if !ok {
		return
	}
	for i := 0; i < s.NumField(); i++ {
		normalizeValue(s.Field(i))
	}
}

func structOf(dto any) (reflect.Value, bool) {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, false
	}
	s := v.Elem()
	return s, s.Kind() == reflect.Struct
}
