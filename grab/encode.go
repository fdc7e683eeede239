package grab

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/jonwraymond/rexec/rlit"
)

// BlockMarker is the comment that opens the appended grab block.
const BlockMarker = "# rexec: appended grab block"

// EncodeOptions controls where the generated R code writes its results.
type EncodeOptions struct {
	// OutputPath is the side-channel file each declaration appends a line to.
	// Required.
	OutputPath string

	// TableDir is the directory data frame CSV files are written to.
	// Defaults to the directory of OutputPath.
	TableDir string

	// Token returns a unique token for each data frame file name.
	// Defaults to a random UUID without dashes.
	Token func() string
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._]+`)

// Encode returns the R block that serializes every declared value to the
// side channel. The block is meant to be appended once, after all user code.
// It returns an empty string when decls is empty.
func Encode(decls []Declaration, opts EncodeOptions) string {
	if len(decls) == 0 {
		return ""
	}
	tableDir := opts.TableDir
	if tableDir == "" {
		tableDir = filepath.Dir(opts.OutputPath)
	}
	token := opts.Token
	if token == nil {
		token = newToken
	}

	var b strings.Builder
	b.WriteString(BlockMarker)
	b.WriteString("\n")
	out := rlit.String(filepath.ToSlash(opts.OutputPath))
	for _, d := range decls {
		csvName := fmt.Sprintf("grab_df_%s_%s.csv", safeName(d.Expr), token())
		csvPath := rlit.String(filepath.ToSlash(filepath.Join(tableDir, csvName)))
		writeSnippet(&b, d, out, csvPath)
	}
	return b.String()
}

func writeSnippet(b *strings.Builder, d Declaration, out, csvPath string) {
	name := rlit.String(d.Expr)
	emit := func(indent, parts string) {
		fmt.Fprintf(b, "%scat(%s, %s, \"\\n\", file = %s, append = TRUE, sep = \"\")\n", indent, name, parts, out)
	}

	fmt.Fprintf(b, "# grab %s as %s\n", d.Expr, d.Type)
	b.WriteString("local({\n")
	fmt.Fprintf(b, "  .grab_value <- (%s)\n", d.Expr)
	b.WriteString("  if (is.data.frame(.grab_value)) {\n")
	emit("    ", fmt.Sprintf("\"=DATAFRAME:\", %s", csvPath))
	fmt.Fprintf(b, "    utils::write.csv(.grab_value, file = %s, row.names = FALSE)\n", csvPath)
	b.WriteString("  } else if (is.matrix(.grab_value)) {\n")
	b.WriteString("    .grab_dims <- dim(.grab_value)\n")
	emit("    ", `"=MATRIX:", .grab_dims[1], "x", .grab_dims[2], ":", paste(t(.grab_value), collapse = ",")`)
	b.WriteString("  } else if (is.vector(.grab_value)) {\n")
	emit("    ", `"=VECTOR:", paste(.grab_value, collapse = ",")`)
	b.WriteString("  } else {\n")
	emit("    ", `"=SCALAR:", paste(as.character(.grab_value), collapse = ",")`)
	b.WriteString("  }\n")
	b.WriteString("})\n")
}

func safeName(expr string) string {
	s := strings.Trim(unsafeNameChars.ReplaceAllString(expr, "_"), "_")
	if s == "" {
		return "value"
	}
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
