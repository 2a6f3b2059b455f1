package bill

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
)

// amountStripRe matches every character that is not a digit, a decimal
// point, or a minus sign. Stripping these removes currency symbols,
// thousands separators, and whitespace from amount strings.
var amountStripRe = regexp.MustCompile(`[^0-9.\-]`)

// ParseAmount converts a heterogeneous amount representation into an exact
// decimal. Supported inputs are decimal.Decimal (returned unchanged),
// integers and floats (converted via their canonical string form, never by
// direct binary-float construction), json.Number, and strings with
// arbitrary adornment ("$1,234.50"). An empty string yields zero.
func ParseAmount(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		// Format with the shortest representation that round-trips, so
		// float 99.99 parses as the decimal 99.99, not 99.9899999...
		d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', -1, 64))
		if err != nil {
			return decimal.Zero, newParseError("cannot parse amount: %v", v)
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, newParseError("cannot parse amount: %v", v)
		}
		return d, nil
	case string:
		cleaned := amountStripRe.ReplaceAllString(v, "")
		if cleaned == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero, newParseError("cannot parse amount: %q", v)
		}
		return d, nil
	default:
		return decimal.Zero, newParseError("unsupported type for amount: %T", value)
	}
}
