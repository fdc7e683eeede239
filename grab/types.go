package grab

import (
	"fmt"
	"strings"
)

// Kind is the decoded form of a declared type.
type Kind int

// Declared type kinds.
const (
	KindInvalid Kind = iota
	KindFloat
	KindInt
	KindString
	KindIntList
	KindFloatList
	KindStringList
	KindArray
	KindTable
)

var kindNames = map[Kind]string{
	KindFloat:      "float",
	KindInt:        "int",
	KindString:     "str",
	KindIntList:    "list[int]",
	KindFloatList:  "list[float]",
	KindStringList: "list[str]",
	KindArray:      "np.ndarray",
	KindTable:      "pd.DataFrame",
}

// String returns the canonical declared type name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// IsList reports whether k is one of the list[T] kinds.
func (k Kind) IsList() bool {
	return k == KindIntList || k == KindFloatList || k == KindStringList
}

// ParseKind maps a declared type name to its Kind.
// Unknown names and unknown list element types return ErrConfiguration.
func ParseKind(name string) (Kind, error) {
	name = strings.TrimSpace(name)
	switch name {
	case "float":
		return KindFloat, nil
	case "int":
		return KindInt, nil
	case "str":
		return KindString, nil
	case "np.ndarray", "array":
		return KindArray, nil
	case "pd.DataFrame", "dataframe":
		return KindTable, nil
	}

	if strings.HasPrefix(name, "list[") && strings.HasSuffix(name, "]") {
		elem := strings.TrimSpace(name[len("list[") : len(name)-1])
		switch elem {
		case "int":
			return KindIntList, nil
		case "float":
			return KindFloatList, nil
		case "str":
			return KindStringList, nil
		}
		return KindInvalid, fmt.Errorf("%w: unsupported list element type %q", ErrConfiguration, elem)
	}

	return KindInvalid, fmt.Errorf("%w: unsupported type %q in @grab annotation", ErrConfiguration, name)
}

// Declaration is one @grab marker and the expression it names.
type Declaration struct {
	// Type is the declared type exactly as written in the marker.
	Type string

	// Expr is the R expression whose value is grabbed. For an assignment line
	// this is the assignment target; otherwise it is the whole line.
	Expr string

	// Source is the full line that followed the marker.
	Source string

	// Line is the 1-based line number of the marker comment.
	Line int
}

// Kind resolves the declared type.
func (d Declaration) Kind() (Kind, error) {
	return ParseKind(d.Type)
}

// Tuple holds the decoded values of several declarations in declaration order.
type Tuple []any
