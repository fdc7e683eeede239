package grab

import "strings"

// Tag identifies the runtime shape the R side classified a value as.
type Tag int

// Wire tags. TagNone marks an untagged line from an older producer.
const (
	TagNone Tag = iota
	TagScalar
	TagVector
	TagMatrix
	TagTable
)

var tagPrefixes = []struct {
	tag    Tag
	prefix string
}{
	{TagScalar, "SCALAR:"},
	{TagVector, "VECTOR:"},
	{TagMatrix, "MATRIX:"},
	{TagTable, "DATAFRAME:"},
}

// String returns the wire spelling of the tag.
func (t Tag) String() string {
	for _, p := range tagPrefixes {
		if p.tag == t {
			return strings.TrimSuffix(p.prefix, ":")
		}
	}
	return "NONE"
}

// Encoded is one side-channel line split into its parts.
type Encoded struct {
	// Name is the expression the line was written for. Informational only.
	Name string

	// Tag is the shape marker, or TagNone for untagged lines.
	Tag Tag

	// Payload is the text after the tag, trimmed of surrounding whitespace.
	Payload string

	// Line is the raw line.
	Line string
}

// ParseLine splits a side-channel line into name and payload.
//
// Tagged lines split at the earliest "=TAG:" so that names containing '='
// survive. Untagged lines split on the first '='. A line without '=' returns
// a *ParseError.
func ParseLine(line string) (Encoded, error) {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "=") {
		return Encoded{}, parseErr(line, "cannot parse line (no '=' found)", nil)
	}

	at, tag := -1, TagNone
	for _, p := range tagPrefixes {
		if i := strings.Index(line, "="+p.prefix); i >= 0 && (at < 0 || i < at) {
			at, tag = i, p.tag
		}
	}
	if at >= 0 {
		rest := line[at+1:]
		return Encoded{
			Name:    line[:at],
			Tag:     tag,
			Payload: strings.TrimSpace(rest[strings.Index(rest, ":")+1:]),
			Line:    line,
		}, nil
	}

	name, value, _ := strings.Cut(line, "=")
	return Encoded{Name: name, Tag: TagNone, Payload: strings.TrimSpace(value), Line: line}, nil
}
