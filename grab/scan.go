package grab

import (
	"regexp"
	"strings"
)

var markerPattern = regexp.MustCompile(`#[ \t]*@grab\{([^}\n]+)\}[ \t]*\r?\n([^\n]+)`)

// Scan returns the @grab declarations found in code, in source order.
//
// A declaration is a comment "# @grab{TYPE}" whose next line defines the
// value. Markers with malformed syntax are treated as ordinary text. A script
// without markers yields an empty slice.
func Scan(code string) []Declaration {
	matches := markerPattern.FindAllStringSubmatchIndex(code, -1)
	decls := make([]Declaration, 0, len(matches))
	for _, m := range matches {
		typ := strings.TrimSpace(code[m[2]:m[3]])
		source := strings.TrimSpace(strings.TrimSuffix(code[m[4]:m[5]], "\r"))
		if source == "" {
			continue
		}
		decls = append(decls, Declaration{
			Type:   typ,
			Expr:   assignTarget(source),
			Source: source,
			Line:   strings.Count(code[:m[0]], "\n") + 1,
		})
	}
	return decls
}

// assignTarget returns the target of an R assignment on line, or the whole
// line when it is not an assignment. Operators inside brackets or string
// literals are ignored, so "f(a = 1)" is not an assignment.
func assignTarget(line string) string {
	depth := 0
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '#':
			return line
		}
		if depth != 0 {
			continue
		}

		rest := line[i:]
		switch {
		case strings.HasPrefix(rest, "<<-"), strings.HasPrefix(rest, "<-"):
			if lhs := strings.TrimSpace(line[:i]); lhs != "" {
				return lhs
			}
			return line
		case strings.HasPrefix(rest, "->"):
			rhs := strings.TrimPrefix(rest[2:], ">")
			if target := strings.TrimSpace(rhs); target != "" {
				return target
			}
			return line
		case c == '=':
			if i+1 < len(line) && line[i+1] == '=' {
				i++
				continue
			}
			if i > 0 && strings.ContainsRune("<>!=", rune(line[i-1])) {
				continue
			}
			if lhs := strings.TrimSpace(line[:i]); lhs != "" {
				return lhs
			}
			return line
		}
	}
	return line
}
