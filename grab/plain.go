package grab

import (
	"math"

	"github.com/go-gota/gota/dataframe"
)

// Plain converts a decoded value into plain Go values that encoding/json can
// marshal: arrays become nested slices, data frames become row maps and
// non-finite floats become nil.
func Plain(v any) any {
	switch x := v.(type) {
	case float64:
		return finite(x)
	case []float64:
		out := make([]any, len(x))
		for i, f := range x {
			out[i] = finite(f)
		}
		return out
	case Array:
		if x.Rank() == 1 {
			return Plain(x.Data)
		}
		rows := x.Rows()
		out := make([]any, len(rows))
		for i, r := range rows {
			out[i] = Plain(r)
		}
		return out
	case dataframe.DataFrame:
		records := x.Maps()
		out := make([]any, len(records))
		for i, rec := range records {
			row := make(map[string]any, len(rec))
			for k, cell := range rec {
				row[k] = Plain(cell)
			}
			out[i] = row
		}
		return out
	case Tuple:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Plain(item)
		}
		return out
	}
	return v
}

func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
