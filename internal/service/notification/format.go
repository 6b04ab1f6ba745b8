package notification

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case decimal.Decimal:
		return t.StringFixed(2)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
