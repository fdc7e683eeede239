package grab

import (
	"errors"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Encoded
		wantErr bool
	}{
		{
			name: "tagged scalar",
			line: "x=SCALAR:3.14",
			want: Encoded{Name: "x", Tag: TagScalar, Payload: "3.14"},
		},
		{
			name: "tagged vector",
			line: "names=VECTOR:a,b",
			want: Encoded{Name: "names", Tag: TagVector, Payload: "a,b"},
		},
		{
			name: "tagged matrix",
			line: "m=MATRIX:2x3:1,2,3,4,5,6",
			want: Encoded{Name: "m", Tag: TagMatrix, Payload: "2x3:1,2,3,4,5,6"},
		},
		{
			name: "data frame with padding",
			line: "df=DATAFRAME: /tmp/a.csv \n",
			want: Encoded{Name: "df", Tag: TagTable, Payload: "/tmp/a.csv"},
		},
		{
			name: "legacy scalar",
			line: "x=3.14",
			want: Encoded{Name: "x", Tag: TagNone, Payload: "3.14"},
		},
		{
			name: "legacy matrix",
			line: "m=2x3:1,2,3,4,5,6",
			want: Encoded{Name: "m", Tag: TagNone, Payload: "2x3:1,2,3,4,5,6"},
		},
		{
			name: "value containing equals",
			line: "s=SCALAR:a=b",
			want: Encoded{Name: "s", Tag: TagScalar, Payload: "a=b"},
		},
		{
			name: "name containing equals",
			line: "x[y == 1]=VECTOR:1,2",
			want: Encoded{Name: "x[y == 1]", Tag: TagVector, Payload: "1,2"},
		},
		{
			name: "empty payload",
			line: "v=VECTOR:",
			want: Encoded{Name: "v", Tag: TagVector, Payload: ""},
		},
		{
			name:    "no equals",
			line:    "garbage",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr {
				if !errors.Is(err, ErrParse) {
					t.Fatalf("ParseLine() error = %v, want ErrParse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLine() error = %v", err)
			}
			got.Line = ""
			if got != tt.want {
				t.Errorf("ParseLine() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLine_ErrorNamesLine(t *testing.T) {
	_, err := ParseLine("no separator here")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("ParseLine() error = %T, want *ParseError", err)
	}
	if pe.Line != "no separator here" {
		t.Errorf("ParseError.Line = %q, want the offending line", pe.Line)
	}
}

func TestTagString(t *testing.T) {
	if TagMatrix.String() != "MATRIX" {
		t.Errorf("TagMatrix.String() = %q", TagMatrix.String())
	}
	if TagTable.String() != "DATAFRAME" {
		t.Errorf("TagTable.String() = %q", TagTable.String())
	}
	if TagNone.String() != "NONE" {
		t.Errorf("TagNone.String() = %q", TagNone.String())
	}
}
