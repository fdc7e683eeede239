package grab

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Array is a rank 1 or rank 2 float64 array decoded from an R vector or
// matrix. Data is stored row-major.
type Array struct {
	// Shape is [n] for a vector and [rows, cols] for a matrix.
	Shape []int

	// Data holds the elements in row-major order.
	Data []float64
}

// NewVector returns a rank 1 array over data.
func NewVector(data []float64) Array {
	return Array{Shape: []int{len(data)}, Data: data}
}

// maxDim is the largest extent R allows for a matrix dimension.
const maxDim = math.MaxInt32

// shapeFits reports whether n elements exactly fill a rows x cols matrix.
// Dimensions are bounded before multiplying so the product cannot wrap.
func shapeFits(rows, cols, n int) bool {
	if rows < 0 || cols < 0 || rows > maxDim || cols > maxDim {
		return false
	}
	if cols != 0 && rows > math.MaxInt/cols {
		return false
	}
	return rows*cols == n
}

// NewMatrix returns a rows x cols array over row-major data.
func NewMatrix(rows, cols int, data []float64) (Array, error) {
	if !shapeFits(rows, cols, len(data)) {
		return Array{}, fmt.Errorf("grab: %d elements do not fill a %dx%d matrix", len(data), rows, cols)
	}
	return Array{Shape: []int{rows, cols}, Data: data}, nil
}

// Rank returns the number of dimensions.
func (a Array) Rank() int {
	return len(a.Shape)
}

// Len returns the number of elements.
func (a Array) Len() int {
	return len(a.Data)
}

// Dims returns rows and columns. A vector of length n reports n x 1.
func (a Array) Dims() (rows, cols int) {
	switch len(a.Shape) {
	case 1:
		return a.Shape[0], 1
	case 2:
		return a.Shape[0], a.Shape[1]
	}
	return 0, 0
}

// At returns the element at row i, column j.
func (a Array) At(i, j int) float64 {
	_, cols := a.Dims()
	return a.Data[i*cols+j]
}

// Rows returns the array as nested row slices.
func (a Array) Rows() [][]float64 {
	rows, cols := a.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = append([]float64(nil), a.Data[i*cols:(i+1)*cols]...)
	}
	return out
}

// Dense returns the array as a gonum matrix. Vectors become a single column.
// It returns nil for an empty array since gonum has no zero-sized matrices.
func (a Array) Dense() *mat.Dense {
	rows, cols := a.Dims()
	if rows == 0 || cols == 0 {
		return nil
	}
	return mat.NewDense(rows, cols, append([]float64(nil), a.Data...))
}

// Vec returns a rank 1 array as a gonum vector, or nil for matrices and
// empty arrays.
func (a Array) Vec() *mat.VecDense {
	if a.Rank() != 1 || len(a.Data) == 0 {
		return nil
	}
	return mat.NewVecDense(len(a.Data), append([]float64(nil), a.Data...))
}
