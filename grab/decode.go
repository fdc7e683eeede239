package grab

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding"
)

// maxLineBytes bounds a single side-channel line. Long vectors are written on
// one line, so the default bufio limit is too small.
const maxLineBytes = 64 << 20

// Logger is the interface for logging.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Decoder converts side-channel lines into Go values.
// The zero value is ready to use.
type Decoder struct {
	// Encoding is the character encoding of the side-channel and CSV files.
	// Nil means UTF-8.
	Encoding encoding.Encoding

	// KeepTables leaves data frame CSV files on disk after loading them.
	KeepTables bool

	// Logger is an optional logger for count and name mismatches.
	Logger Logger
}

// ReadLines reads every line of r, decoding it from d.Encoding.
func (d *Decoder) ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(d.reader(r))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("grab: read side channel: %w", err)
	}
	return lines, nil
}

// ReadFile reads the side-channel file at path. The boolean result is false
// when the file does not exist, which callers treat as "nothing grabbed".
func (d *Decoder) ReadFile(path string) ([]string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("grab: open side channel: %w", err)
	}
	defer f.Close()

	lines, err := d.ReadLines(f)
	if err != nil {
		return nil, false, err
	}
	return lines, true, nil
}

// Decode pairs lines with decls by position and decodes each pair.
// Decoding stops at the shorter of the two; unmatched declarations are
// dropped without error.
func (d *Decoder) Decode(decls []Declaration, lines []string) ([]any, error) {
	n := min(len(decls), len(lines))
	if len(decls) != len(lines) && d.Logger != nil {
		d.Logger.Warn("grab declaration and output counts differ",
			"declarations", len(decls),
			"lines", len(lines),
			"decoded", n)
	}

	values := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := d.DecodeLine(decls[i], lines[i])
		if err != nil {
			return nil, fmt.Errorf("grab %s (%s): %w", decls[i].Expr, decls[i].Type, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// DecodeLine decodes a single side-channel line as the declared type of decl.
func (d *Decoder) DecodeLine(decl Declaration, line string) (any, error) {
	kind, err := decl.Kind()
	if err != nil {
		return nil, err
	}
	enc, err := ParseLine(line)
	if err != nil {
		return nil, err
	}
	if d.Logger != nil && enc.Name != decl.Expr {
		d.Logger.Warn("grab output name does not match declaration",
			"declared", decl.Expr,
			"written", enc.Name)
	}
	if err := checkTag(kind, enc); err != nil {
		return nil, err
	}

	switch kind {
	case KindFloat:
		return parseFloat(enc.Line, enc.Payload)
	case KindInt:
		return parseInt(enc.Line, enc.Payload)
	case KindString:
		return enc.Payload, nil
	case KindIntList:
		return parseList(enc, parseInt)
	case KindFloatList:
		return parseList(enc, parseFloat)
	case KindStringList:
		return parseList(enc, func(_, s string) (string, error) { return s, nil })
	case KindArray:
		return decodeArray(enc)
	case KindTable:
		return d.decodeTable(enc)
	}
	return nil, fmt.Errorf("%w: unsupported type %q in @grab annotation", ErrConfiguration, decl.Type)
}

func (d *Decoder) reader(r io.Reader) io.Reader {
	if d.Encoding == nil {
		return r
	}
	return d.Encoding.NewDecoder().Reader(r)
}

// checkTag rejects tagged values whose shape cannot satisfy kind.
func checkTag(kind Kind, enc Encoded) error {
	bad := false
	switch kind {
	case KindFloat, KindInt, KindString, KindIntList, KindFloatList, KindStringList:
		bad = enc.Tag == TagMatrix || enc.Tag == TagTable
	case KindArray:
		bad = enc.Tag == TagTable
	}
	if bad {
		return &ParseError{
			Line:    enc.Line,
			Message: fmt.Sprintf("value written as %s cannot be decoded as %s", enc.Tag, kind),
			Err:     ErrTypeMismatch,
		}
	}
	return nil
}

func parseFloat(line, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "NA" {
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, parseErr(line, fmt.Sprintf("invalid float %q", s), err)
	}
	return f, nil
}

// parseInt accepts plain integers and integral values in R's exponent
// notation, such as 1e+05.
func parseInt(line, s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err == nil {
		return n, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f), nil
	}
	return 0, parseErr(line, fmt.Sprintf("invalid int %q", s), err)
}

func parseList[T any](enc Encoded, conv func(line, s string) (T, error)) ([]T, error) {
	if enc.Payload == "" {
		return []T{}, nil
	}
	items := strings.Split(enc.Payload, ",")
	out := make([]T, len(items))
	for i, item := range items {
		v, err := conv(enc.Line, item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func decodeArray(enc Encoded) (Array, error) {
	isMatrix := enc.Tag == TagMatrix ||
		(enc.Tag == TagNone && strings.Contains(enc.Payload, ":") && strings.Contains(enc.Payload, "x"))
	if !isMatrix {
		data, err := parseList(enc, parseFloat)
		if err != nil {
			return Array{}, err
		}
		return NewVector(data), nil
	}

	shape, elems, _ := strings.Cut(enc.Payload, ":")
	dims := strings.Split(shape, "x")
	if len(dims) != 2 {
		return Array{}, parseErr(enc.Line, "invalid matrix shape", nil)
	}
	rows, err := strconv.Atoi(strings.TrimSpace(dims[0]))
	if err != nil {
		return Array{}, parseErr(enc.Line, "invalid matrix row count", err)
	}
	cols, err := strconv.Atoi(strings.TrimSpace(dims[1]))
	if err != nil {
		return Array{}, parseErr(enc.Line, "invalid matrix column count", err)
	}

	data, err := parseList(Encoded{Line: enc.Line, Payload: strings.TrimSpace(elems)}, parseFloat)
	if err != nil {
		return Array{}, err
	}
	if !shapeFits(rows, cols, len(data)) {
		return Array{}, &ShapeError{Line: enc.Line, Rows: rows, Cols: cols, Elements: len(data)}
	}
	return NewMatrix(rows, cols, data)
}

func (d *Decoder) decodeTable(enc Encoded) (dataframe.DataFrame, error) {
	if enc.Tag != TagTable {
		return dataframe.DataFrame{}, parseErr(enc.Line, "expected 'DATAFRAME:' prefix", nil)
	}
	path := enc.Payload
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, parseErr(enc.Line, "cannot open data frame file", err)
	}
	records, err := csv.NewReader(d.reader(f)).ReadAll()
	f.Close()
	if !d.KeepTables {
		if err := os.Remove(path); err != nil && d.Logger != nil {
			d.Logger.Warn("failed to remove data frame file", "path", path, "error", err)
		}
	}
	if err != nil {
		return dataframe.DataFrame{}, parseErr(enc.Line, "invalid data frame CSV", err)
	}

	var df dataframe.DataFrame
	if len(records) == 1 {
		df = emptyTable(records[0])
	} else {
		df = dataframe.LoadRecords(records)
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, parseErr(enc.Line, "invalid data frame CSV", df.Err)
	}
	return df, nil
}

// emptyTable builds a zero-row frame from a header-only CSV. R writes one for
// a data frame whose rows were all filtered out.
func emptyTable(header []string) dataframe.DataFrame {
	cols := make([]series.Series, len(header))
	for i, name := range header {
		cols[i] = series.New([]string{}, series.String, name)
	}
	return dataframe.New(cols...)
}

// Decode decodes lines against decls with a zero-value Decoder.
func Decode(decls []Declaration, lines []string) ([]any, error) {
	var d Decoder
	return d.Decode(decls, lines)
}

// Collapse returns nil for no values, the value itself for one and a Tuple
// for several.
func Collapse(values []any) any {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	}
	return Tuple(values)
}
