package export

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestWriteChartPNG(t *testing.T) {
	times := make([]float64, 50)
	a := make([]float64, 50)
	b := make([]float64, 50)
	for i := range times {
		times[i] = float64(i) * 0.1
		a[i] = math.Sin(times[i])
		b[i] = math.Cos(times[i])
	}

	var buf bytes.Buffer
	err := WriteChartPNG(&buf, "positions", times, []Series{{Name: "x", Values: a}, {Name: "y", Values: b}}, 400, 300)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestWriteChartPNGNoData(t *testing.T) {
	times := []float64{0, 1, 2}
	var buf bytes.Buffer
	err := WriteChartPNG(&buf, "", times, []Series{{Name: "bad", Values: []float64{math.NaN(), 1, 2}}}, 200, 100)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestFinitePrefix(t *testing.T) {
	xs, ys := finitePrefix([]float64{0, 1, 2, 3}, []float64{5, 6, math.Inf(1), 7})
	if len(xs) != 2 || len(ys) != 2 || ys[1] != 6 {
		t.Errorf("got %v %v", xs, ys)
	}
	xs, _ = finitePrefix([]float64{0, 1}, []float64{1, 2, 3})
	if len(xs) != 2 {
		t.Errorf("length = %d, want the shorter input", len(xs))
	}
}
