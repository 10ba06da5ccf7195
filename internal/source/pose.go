package source

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// tokensPerLine is 2 metadata tokens, 26x3 values and a trailing empty field.
const tokensPerLine = 2 + NumJoints*NumCoords + 1

// ReadPoseFile parses a pose file into a Sequence named after the file without extension.
// Trailing blank lines are ignored; any other line must be a full frame.
func ReadPoseFile(path string) (Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sequence{}, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	seq := Sequence{Name: name}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo, blankAt := 0, 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		// Blank lines are allowed only at the end of the file; an interior one
		// would shift every later frame against its label.
		if strings.TrimSpace(line) == "" {
			if blankAt == 0 {
				blankAt = lineNo
			}
			continue
		}
		if blankAt != 0 {
			_, err := ParseFrame("")
			return Sequence{}, fmt.Errorf("%s:%d: %w", path, blankAt, err)
		}
		frame, err := ParseFrame(line)
		if err != nil {
			return Sequence{}, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		seq.Frames = append(seq.Frames, frame)
	}
	if err := sc.Err(); err != nil {
		return Sequence{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return seq, nil
}

// ParseFrame parses one pose line. Values are joint-major (x,y,z per joint) and
// are transposed into axis-major order.
func ParseFrame(line string) (Frame, error) {
	var frame Frame

	tokens := strings.Split(line, ";")
	if len(tokens) != tokensPerLine {
		return frame, fmt.Errorf("%w: got %d tokens, want %d", ErrMalformedFrame, len(tokens), tokensPerLine)
	}
	if strings.TrimSpace(tokens[len(tokens)-1]) != "" {
		return frame, fmt.Errorf("%w: missing trailing separator", ErrMalformedFrame)
	}

	values := tokens[2 : len(tokens)-1]
	for i, tok := range values {
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return frame, fmt.Errorf("%w: value %d: %q", ErrMalformedFrame, i, tok)
		}
		joint, axis := i/NumCoords, i%NumCoords
		frame[axis][joint] = v
	}

	return frame, nil
}
