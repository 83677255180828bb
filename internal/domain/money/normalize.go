// Package money canonicalizes the heterogeneous numeric encodings that
// upstream storage delivers for monetary amounts. Every amount entering the
// subsystem must pass through Normalize before any aggregation or comparison.
package money

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// WrapperField is the key under which the upstream document store wraps
// decimal values (e.g. {"$numberDecimal": "1234.56"}).
const WrapperField = "$numberDecimal"

// Normalize converts an arbitrary value into a canonical decimal amount.
// Accepted shapes: native Go numerics, json.Number, numeric strings, and
// wrapper maps carrying the value under WrapperField. Nil, malformed, or
// unrecognized input yields zero; Normalize never fails.
func Normalize(v interface{}) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero
		}
		return *x
	case float64:
		return decimal.NewFromFloat(x)
	case float32:
		return decimal.NewFromFloat32(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case uint:
		return decimal.NewFromUint64(uint64(x))
	case uint64:
		return decimal.NewFromUint64(x)
	case json.Number:
		return fromString(x.String())
	case string:
		return fromString(x)
	case map[string]interface{}:
		if inner, ok := x[WrapperField]; ok {
			return Normalize(inner)
		}
		return decimal.Zero
	case map[string]string:
		if inner, ok := x[WrapperField]; ok {
			return fromString(inner)
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// NormalizeField normalizes the value stored under key in a raw payload map.
// A missing key yields zero.
func NormalizeField(m map[string]interface{}, key string) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return Normalize(m[key])
}

func fromString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
