package nbody

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is a D-component quantity: a position, velocity or force.
type Vector []float64

func NewVector(dim int) Vector {
	return make(Vector, dim)
}

func (v Vector) Dim() int { return len(v) }

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Zero sets every component to 0 in place.
func (v Vector) Zero() {
	for i := range v {
		v[i] = 0
	}
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean length.
func (v Vector) Norm() float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, 2)
}

// The binary operations below panic when the lengths differ.

func (v Vector) Dot(o Vector) float64 {
	return floats.Dot(v, o)
}

func (v Vector) Add(o Vector) Vector {
	return floats.AddTo(make(Vector, len(v)), v, o)
}

func (v Vector) Sub(o Vector) Vector {
	return floats.SubTo(make(Vector, len(v)), v, o)
}

func (v Vector) Scale(factor float64) Vector {
	return floats.ScaleTo(make(Vector, len(v)), factor, v)
}
