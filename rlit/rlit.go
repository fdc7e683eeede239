// Package rlit renders Go values as R source literals so that host data can be
// embedded into generated scripts.
//
//	rlit.Encode(mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
//	// matrix(c(1, 3, 2, 4), nrow = 2, ncol = 2, byrow = FALSE)
//
// Matrices are written column-major with explicit dimensions. Data frames
// become a data.frame() call with one c() vector per column; missing values
// map to NA and non-numeric columns are quoted.
package rlit

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
)

// ErrUnsupported is returned for values that have no R literal form.
var ErrUnsupported = errors.New("rlit: unsupported type")

// Encode returns the R literal for v.
//
// Supported: string, bool, int, int64, float64, []string, []bool, []int,
// []float64, mat.Vector, mat.Matrix and dataframe.DataFrame.
func Encode(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int64:
		return Int(int(x)), nil
	case float64:
		return Float(x), nil
	case []string:
		return Strings(x), nil
	case []bool:
		return Bools(x), nil
	case []int:
		return Ints(x), nil
	case []float64:
		return Floats(x), nil
	case mat.Vector:
		return Vector(x), nil
	case mat.Matrix:
		return Matrix(x), nil
	case dataframe.DataFrame:
		return DataFrame(x)
	case *dataframe.DataFrame:
		if x == nil {
			return "NULL", nil
		}
		return DataFrame(*x)
	case nil:
		return "NULL", nil
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupported, v)
}

// String returns s as a double-quoted R string.
// Go's escape sequences are a subset of R's, so strconv.Quote is exact.
func String(s string) string {
	return strconv.Quote(s)
}

// Bool returns TRUE or FALSE.
func Bool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// Int returns n as an R integer literal.
func Int(n int) string {
	return strconv.Itoa(n) + "L"
}

// Float returns f as an R double literal. NaN and infinities use R's names.
func Float(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Strings returns a character vector.
func Strings(xs []string) string {
	if len(xs) == 0 {
		return "character(0)"
	}
	return vector(len(xs), func(i int) string { return String(xs[i]) })
}

// Bools returns a logical vector.
func Bools(xs []bool) string {
	if len(xs) == 0 {
		return "logical(0)"
	}
	return vector(len(xs), func(i int) string { return Bool(xs[i]) })
}

// Ints returns an integer vector.
func Ints(xs []int) string {
	if len(xs) == 0 {
		return "integer(0)"
	}
	return vector(len(xs), func(i int) string { return Int(xs[i]) })
}

// Floats returns a double vector.
func Floats(xs []float64) string {
	if len(xs) == 0 {
		return "numeric(0)"
	}
	return vector(len(xs), func(i int) string { return Float(xs[i]) })
}

// Vector returns a double vector from a gonum vector.
func Vector(v mat.Vector) string {
	n := v.Len()
	if n == 0 {
		return "numeric(0)"
	}
	return vector(n, func(i int) string { return Float(v.AtVec(i)) })
}

// Matrix returns a matrix() call with the elements in column-major order.
func Matrix(m mat.Matrix) string {
	rows, cols := m.Dims()
	elems := make([]string, 0, rows*cols)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			elems = append(elems, Float(m.At(i, j)))
		}
	}
	return fmt.Sprintf("matrix(c(%s), nrow = %d, ncol = %d, byrow = FALSE)",
		strings.Join(elems, ", "), rows, cols)
}

// DataFrame returns a data.frame() call with one vector per column.
func DataFrame(df dataframe.DataFrame) (string, error) {
	if df.Err != nil {
		return "", fmt.Errorf("rlit: data frame: %w", df.Err)
	}
	names := df.Names()
	cols := make([]string, 0, len(names)+1)
	for _, name := range names {
		col, err := column(df.Col(name))
		if err != nil {
			return "", fmt.Errorf("rlit: column %q: %w", name, err)
		}
		cols = append(cols, fmt.Sprintf("%s = %s", backtick(name), col))
	}
	if len(cols) == 0 {
		return "data.frame()", nil
	}
	cols = append(cols, "check.names = FALSE")
	return fmt.Sprintf("data.frame(%s)", strings.Join(cols, ", ")), nil
}

func column(s series.Series) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	n := s.Len()
	elems := make([]string, n)
	for i := 0; i < n; i++ {
		e := s.Elem(i)
		if e.IsNA() {
			elems[i] = "NA"
			continue
		}
		switch s.Type() {
		case series.Float:
			elems[i] = Float(e.Float())
		case series.Int:
			elems[i] = e.String()
		case series.Bool:
			b, err := e.Bool()
			if err != nil {
				return "", err
			}
			elems[i] = Bool(b)
		default:
			elems[i] = String(e.String())
		}
	}
	return "c(" + strings.Join(elems, ", ") + ")", nil
}

func vector(n int, elem func(int) string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = elem(i)
	}
	return "c(" + strings.Join(parts, ", ") + ")"
}

func backtick(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}
