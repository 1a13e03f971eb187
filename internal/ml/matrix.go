package ml

import (
	"math"
	"math/rand"
)

// Matrix is a dense row-major weight matrix with a gradient buffer of
// the same shape. Biases are represented as 1-row matrices.
type Matrix struct {
	Rows int
	Cols int
	W    []float64
	G    []float64
}

func NewMatrix(rows, cols int, std float64, rng *rand.Rand) *Matrix {
	w := make([]float64, rows*cols)
	if std > 0 {
		for i := range w {
			w[i] = rng.NormFloat64() * std
		}
	}
	return &Matrix{Rows: rows, Cols: cols, W: w, G: make([]float64, rows*cols)}
}

// Row returns the t-th row as a slice view into the backing array.
func (m *Matrix) Row(t int) []float64 {
	return m.W[t*m.Cols : (t+1)*m.Cols]
}

func (m *Matrix) GradRow(t int) []float64 {
	return m.G[t*m.Cols : (t+1)*m.Cols]
}

func (m *Matrix) ZeroGrad() {
	for i := range m.G {
		m.G[i] = 0
	}
}

// ScaleGrad divides the accumulated gradient by n (batch averaging).
func (m *Matrix) ScaleGrad(n float64) {
	inv := 1.0 / n
	for i := range m.G {
		m.G[i] *= inv
	}
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// addOuter accumulates dst += outer(u, v) where dst has len(u) rows
// and len(v) cols.
func addOuter(dst *Matrix, u, v []float64) {
	for i := range u {
		if u[i] == 0 {
			continue
		}
		row := dst.GradRow(i)
		for j := range v {
			row[j] += u[i] * v[j]
		}
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// softmax computes a numerically stable softmax in place over logits.
func softmax(logits []float64) []float64 {
	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	total := 0.0
	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = math.Exp(v - maxVal)
		total += out[i]
	}
	for i := range out {
		out[i] /= total
	}
	return out
}
