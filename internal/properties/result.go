package properties

import (
	"math"

	"github.com/tidwall/gjson"

	"github.com/AaronLay10/schemagraph/internal/fragment"
)

// fromResult converts a gjson result into a Value, keeping object key order.
func fromResult(res gjson.Result) fragment.Value {
	switch res.Type {
	case gjson.String:
		return fragment.NonEmpty(res.Str)
	case gjson.Number:
		if res.Num == math.Trunc(res.Num) && math.Abs(res.Num) < 1<<53 {
			return fragment.Int(int(res.Num))
		}
		return fragment.Float(res.Num)
	case gjson.True:
		return fragment.Bool(true)
	case gjson.False:
		return fragment.Bool(false)
	case gjson.JSON:
		if res.IsArray() {
			var items []fragment.Value
			for _, it := range res.Array() {
				items = append(items, fromResult(it))
			}
			return fragment.ListOf(items...)
		}
		m := fragment.NewMap()
		res.ForEach(func(key, val gjson.Result) bool {
			m.Set(key.String(), fromResult(val))
			return true
		})
		return fragment.Flatten(m)
	}
	return fragment.Absent()
}
