package utils

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ToFloat coerces the loosely typed numbers handed over by the data layer
// into a float64. Missing or unparsable values become 0.
func ToFloat(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case decimal.Decimal:
		return n.InexactFloat64()
	case *decimal.Decimal:
		if n == nil {
			return 0
		}
		return n.InexactFloat64()
	case decimal.NullDecimal:
		if !n.Valid {
			return 0
		}
		return n.Decimal.InexactFloat64()
	case *float64:
		if n == nil {
			return 0
		}
		return finite(*n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return d.InexactFloat64()
	default:
		return 0
	}
}

// ToDecimal is the decimal counterpart of ToFloat.
func ToDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case decimal.NullDecimal:
		if !n.Valid {
			return decimal.Zero
		}
		return n.Decimal
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero
		}
		return d
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	default:
		f := ToFloat(v)
		return decimal.NewFromFloat(f)
	}
}

// RoundFloat rounds half away from zero to the given number of decimal places.
func RoundFloat(f float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(f*pow) / pow
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
