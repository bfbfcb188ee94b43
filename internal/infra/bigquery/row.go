package bigquery

import (
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// row adapts one result row to store.Row.
type row []bigquery.Value

// Scan copies column values into dest. Supported destinations are *string,
// *int64, **int64, *float64, **float64 and *civil.Date. NULL leaves a
// pointer-to-pointer nil and any other destination at its zero value.
func (r row) Scan(dest ...any) error {
	if len(dest) != len(r) {
		return fmt.Errorf("Scan: %d destinations for %d columns", len(dest), len(r))
	}
	for i, v := range r {
		if err := assign(dest[i], v); err != nil {
			return fmt.Errorf("Scan: column %d: %w", i, err)
		}
	}
	return nil
}

func assign(dest any, v bigquery.Value) error {
	switch d := dest.(type) {
	case *string:
		if v == nil {
			*d = ""
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return mismatch(dest, v)
		}
		*d = s
	case *int64:
		if v == nil {
			*d = 0
			return nil
		}
		n, ok := v.(int64)
		if !ok {
			return mismatch(dest, v)
		}
		*d = n
	case **int64:
		if v == nil {
			*d = nil
			return nil
		}
		n, ok := v.(int64)
		if !ok {
			return mismatch(dest, v)
		}
		*d = &n
	case *float64:
		if v == nil {
			*d = 0
			return nil
		}
		f, err := toFloat(v)
		if err != nil {
			return err
		}
		*d = f
	case **float64:
		if v == nil {
			*d = nil
			return nil
		}
		f, err := toFloat(v)
		if err != nil {
			return err
		}
		*d = &f
	case *civil.Date:
		if v == nil {
			*d = civil.Date{}
			return nil
		}
		date, ok := v.(civil.Date)
		if !ok {
			return mismatch(dest, v)
		}
		*d = date
	default:
		return fmt.Errorf("unsupported destination %T", dest)
	}
	return nil
}

func toFloat(v bigquery.Value) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
}

func mismatch(dest any, v bigquery.Value) error {
	return fmt.Errorf("cannot assign %T to %T", v, dest)
}
