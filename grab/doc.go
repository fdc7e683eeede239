// Package grab implements the variable-extraction protocol used to pull values
// computed inside an R script back into Go.
//
// A script marks the values it wants to hand back with a comment placed on the
// line directly above the assignment:
//
//	# @grab{float}
//	x <- 3.14
//
//	# @grab{list[str]}
//	names <- c("a", "b")
//
// The protocol has three stages:
//
//   - [Scan] collects the ordered [Declaration] list from the script text.
//   - [Encode] produces an R block that, appended to the script, classifies
//     each value at runtime (data frame, matrix, vector, scalar) and writes one
//     line per declaration to a side-channel file.
//   - [Decoder] reads the side-channel lines back, pairs them positionally
//     with the declarations and converts them to the declared Go type.
//
// # Wire Format
//
// Each side-channel line has the shape name=TAG:payload:
//
//	x=SCALAR:3.14
//	names=VECTOR:a,b
//	m=MATRIX:2x3:1,2,3,4,5,6
//	df=DATAFRAME:/tmp/rexec-123/grab_df_df_9f1c.csv
//
// Matrix elements are row-major; the generated R code transposes before
// flattening since R stores matrices column-major. Untagged lines written by
// older producers (x=3.14, m=2x3:1,2,...) are still accepted.
//
// # Declared Types
//
//	float         float64
//	int           int
//	str           string
//	list[int]     []int
//	list[float]   []float64
//	list[str]     []string
//	np.ndarray    Array      (alias: array)
//	pd.DataFrame  dataframe.DataFrame (alias: dataframe)
//
// The declared type drives decoding. The line's tag is only used to pick the
// array layout and to reject values that cannot fit the declared type.
package grab
