package formtree

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/myrjola/formtree/internal/errors"
)

var ErrInvalidPath = errors.NewSentinel("invalid question path")

// Path locates a node by its 0-based sibling index at every depth, starting from the top level.
type Path []int

// ParsePath parses the display form of a path, e.g. "Q2.1" or "2.1", into 0-based indices.
func ParsePath(s string) (Path, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "Q"), "q")
	if trimmed == "" {
		return nil, errors.Wrap(ErrInvalidPath, "empty path", slog.String("path", s))
	}
	parts := strings.Split(trimmed, ".")
	path := make(Path, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, errors.Wrap(ErrInvalidPath, "positions start at 1",
				slog.String("path", s), slog.String("part", part))
		}
		path[i] = n - 1
	}
	return path, nil
}

// String returns the display form of the path, the same string the numbering assigns to the node.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Q")
	for i, idx := range p {
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(strconv.Itoa(idx + 1))
	}
	return b.String()
}

// Child returns the path of the i-th child of the node at p.
func (p Path) Child(i int) Path {
	child := make(Path, 0, len(p)+1)
	child = append(child, p...)
	return append(child, i)
}
