package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/gravsim/internal/nbody"
)

func Load(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	in, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// Write emits in using the shortest float formatting that parses back to
// the same values.
func Write(w io.Writer, in *Input) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, formatFloat(in.DeltaT))
	fmt.Fprintln(bw, formatFloat(in.EndTime))
	fmt.Fprintln(bw, len(in.Particles))
	for _, b := range in.Particles {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, formatFloat(b.Mass))
		fmt.Fprintln(bw, formatVector(b.Position))
		fmt.Fprintln(bw, formatVector(b.Velocity))
	}
	return bw.Flush()
}

func Save(path string, in *Input) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, in); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatVector(v nbody.Vector) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = formatFloat(x)
	}
	return strings.Join(parts, " ")
}
