package graph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrGraphLoad is matched by every error returned from LoadEdgeList.
var ErrGraphLoad = errors.New("graph load error")

// LoadError reports a failure to read a graph. The underlying error is
// available through errors.Unwrap, so I/O errors keep their identity.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load graph %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrGraphLoad }

// LoadEdgeList reads a directed edge list from path.
func LoadEdgeList(path string) (*CSR, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	g, err := ParseEdgeList(file)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return g, nil
}

// ParseEdgeList reads one "source target" arc per line. Blank lines and
// lines starting with '#' or '%' are skipped. The node count is the largest
// id plus one.
func ParseEdgeList(r io.Reader) (*CSR, error) {
	var from, to []int32
	maxNode := int64(-1)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			return nil, fmt.Errorf("line %d: expected source and target, got %q", lineNum, line)
		}
		src, err := parseNodeID(parts[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		dst, err := parseNodeID(parts[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		from = append(from, int32(src))
		to = append(to, int32(dst))
		maxNode = max(maxNode, src, dst)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	b := NewBuilder(int(maxNode + 1))
	for i := range from {
		if err := b.AddArc(int(from[i]), int(to[i])); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

func parseNodeID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid node id %q: %w", s, err)
	}
	if id < 0 {
		return 0, fmt.Errorf("invalid node id %q: negative", s)
	}
	return id, nil
}
