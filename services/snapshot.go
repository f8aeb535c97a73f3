package services

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

func parseSchema(db *gorm.DB, doc any) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(doc); err != nil {
		return nil, err
	}
	return stmt.Schema, nil
}

// Snapshot flattens a model into a column -> value map. References are already
// string ids; timestamps become RFC3339 strings and money becomes a decimal
// string, so the map survives a JSON round trip unchanged.
func Snapshot(ctx context.Context, db *gorm.DB, doc any) (map[string]any, error) {
	sch, err := parseSchema(db, doc)
	if err != nil {
		return nil, err
	}
	rv := reflect.Indirect(reflect.ValueOf(doc))

	out := make(map[string]any, len(sch.Fields))
	for _, f := range sch.Fields {
		if f.DBName == "" {
			continue
		}
		v, _ := f.ValueOf(ctx, rv)
		out[f.DBName] = snapshotValue(v)
	}
	return out, nil
}

func snapshotValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case decimal.Decimal:
		return x.String()
	case []byte:
		return string(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return snapshotValue(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Bool:
		return rv.Bool()
	}
	return fmt.Sprint(v)
}

// decodeSnapshot is the inverse of Snapshot: it fills doc from a map that has
// been through JSON, so numbers arrive as float64.
func decodeSnapshot(ctx context.Context, db *gorm.DB, snapshot map[string]any, doc any) error {
	sch, err := parseSchema(db, doc)
	if err != nil {
		return err
	}
	rv := reflect.Indirect(reflect.ValueOf(doc))

	for _, f := range sch.Fields {
		if f.DBName == "" {
			continue
		}
		raw, ok := snapshot[f.DBName]
		if !ok {
			continue
		}
		if err := assign(f.ReflectValueOf(ctx, rv), raw); err != nil {
			return fmt.Errorf("snapshot field %s: %w", f.DBName, err)
		}
	}
	return nil
}

func assign(target reflect.Value, raw any) error {
	if raw == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}

	switch target.Type() {
	case timeType:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("expected timestamp string, got %T", raw)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		target.Set(reflect.ValueOf(t.UTC()))
		return nil
	case decimalType:
		d, err := toDecimal(raw)
		if err != nil {
			return err
		}
		target.Set(reflect.ValueOf(d))
		return nil
	}

	switch target.Kind() {
	case reflect.Ptr:
		elem := reflect.New(target.Type().Elem())
		if err := assign(elem.Elem(), raw); err != nil {
			return err
		}
		target.Set(elem)
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", raw)
		}
		target.SetString(s)
	case reflect.Slice:
		s, ok := raw.(string)
		if !ok || target.Type().Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("unsupported slice value %T", raw)
		}
		target.SetBytes([]byte(s))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toFloat(raw)
		if err != nil {
			return err
		}
		target.SetInt(int64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toFloat(raw)
		if err != nil {
			return err
		}
		target.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		n, err := toFloat(raw)
		if err != nil {
			return err
		}
		target.SetFloat(n)
	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", raw)
		}
		target.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s", target.Kind())
	}
	return nil
}

func toFloat(raw any) (float64, error) {
	switch x := raw.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		return strconv.ParseFloat(x, 64)
	}
	return 0, fmt.Errorf("expected number, got %T", raw)
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch x := raw.(type) {
	case string:
		return decimal.NewFromString(x)
	case float64:
		return decimal.NewFromFloat(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case json.Number:
		return decimal.NewFromString(x.String())
	}
	return decimal.Zero, fmt.Errorf("expected decimal, got %T", raw)
}
