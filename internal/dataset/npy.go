package dataset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sbinet/npyio"
)

const (
	descrFloat64 = "<f8"
	descrInt64   = "<i8"
)

var npyMagic = []byte("\x93NUMPY")

// npyHeader renders a version 1.0 header dictionary padded so the data starts
// on a 64-byte boundary.
func npyHeader(descr string, shape []int) []byte {
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	shapeStr := "(" + strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeStr += ","
	}
	shapeStr += ")"

	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, shapeStr)
	// magic(6) + version(2) + header length(2) + dict + newline
	pad := 64 - (len(npyMagic)+4+len(dict)+1)%64
	if pad == 64 {
		pad = 0
	}
	dict += strings.Repeat(" ", pad) + "\n"

	out := make([]byte, 0, len(npyMagic)+4+len(dict))
	out = append(out, npyMagic...)
	out = append(out, 1, 0)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(dict)))
	return append(out, dict...)
}

// writeNpy writes data ([]float64 or []int64) as a C-ordered array of the given shape.
func writeNpy(path string, shape []int, data any) error {
	var descr string
	var n int
	switch v := data.(type) {
	case []float64:
		descr, n = descrFloat64, len(v)
	case []int64:
		descr, n = descrInt64, len(v)
	default:
		return fmt.Errorf("npy: unsupported element type %T", data)
	}
	if numElems(shape) != n {
		return fmt.Errorf("%w: shape %v holds %d values, got %d", ErrShapeMismatch, shape, numElems(shape), n)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if _, err := w.Write(npyHeader(descr, shape)); err != nil {
		f.Close()
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, data); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readNpy reads an array into ptr (*[]float64 or *[]int64) and returns its shape.
func readNpy(path string, ptr any) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := npyio.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if r.Header.Descr.Fortran {
		return nil, fmt.Errorf("%w: %s is Fortran-ordered", ErrShapeMismatch, path)
	}
	if err := r.Read(ptr); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	shape := append([]int(nil), r.Header.Descr.Shape...)
	return shape, nil
}

func numElems(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
