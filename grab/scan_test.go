package grab

import (
	"testing"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []Declaration
	}{
		{
			name: "no markers",
			code: "x <- 1\nprint(x)\n",
			want: []Declaration{},
		},
		{
			name: "single assignment",
			code: "# @grab{float}\nx <- 3.14\n",
			want: []Declaration{{Type: "float", Expr: "x", Source: "x <- 3.14", Line: 1}},
		},
		{
			name: "source order preserved",
			code: "y <- 2\n# @grab{int}\nn <- 10L\n\n#@grab{list[str]}\nnames = c(\"a\", \"b\")\n",
			want: []Declaration{
				{Type: "int", Expr: "n", Source: "n <- 10L", Line: 2},
				{Type: "list[str]", Expr: "names", Source: `names = c("a", "b")`, Line: 5},
			},
		},
		{
			name: "bare expression",
			code: "# @grab{np.ndarray}\nm\n",
			want: []Declaration{{Type: "np.ndarray", Expr: "m", Source: "m", Line: 1}},
		},
		{
			name: "crlf line endings",
			code: "# @grab{str}\r\nlabel <- \"hi\"\r\n",
			want: []Declaration{{Type: "str", Expr: "label", Source: `label <- "hi"`, Line: 1}},
		},
		{
			name: "malformed marker ignored",
			code: "# @grab{float\nx <- 1\n# @grab float\ny <- 2\n",
			want: []Declaration{},
		},
		{
			name: "marker on last line ignored",
			code: "x <- 1\n# @grab{float}",
			want: []Declaration{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.code)
			if len(got) != len(tt.want) {
				t.Fatalf("Scan() returned %d declarations, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Scan()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScan_EmptyIsNotNil(t *testing.T) {
	if got := Scan(""); got == nil {
		t.Error("Scan(\"\") = nil, want empty slice")
	}
}

func TestAssignTarget(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"x <- 3.14", "x"},
		{"x<-1", "x"},
		{"x <<- 1", "x"},
		{"x = 1", "x"},
		{"df$col <- 1:3", "df$col"},
		{"3.14 -> x", "x"},
		{"3.14 ->> x", "x"},
		{"f(a = 1)", "f(a = 1)"},
		{"x == 1", "x == 1"},
		{"x <= 1", "x <= 1"},
		{"y != 2", "y != 2"},
		{`paste("a <- b")`, `paste("a <- b")`},
		{"`my var` <- 2", "`my var`"},
		{"m", "m"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := assignTarget(tt.line); got != tt.want {
				t.Errorf("assignTarget(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
