package formtree

import (
	"log/slog"

	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/models"
)

var (
	ErrMissingID   = errors.NewSentinel("question without id")
	ErrDuplicateID = errors.NewSentinel("duplicate question id")
)

// Validate checks that every question in the tree has a non-empty id that is unique across all depths.
func Validate(tree models.Tree) error {
	seen := make(map[string]Path, tree.Len())
	return validate(tree, nil, seen)
}

func validate(siblings []models.QuestionNode, parent Path, seen map[string]Path) error {
	for i, n := range siblings {
		path := parent.Child(i)
		if n.ID == "" {
			return errors.Wrap(ErrMissingID, "validate", slog.String("path", path.String()))
		}
		if first, ok := seen[n.ID]; ok {
			return errors.Wrap(ErrDuplicateID, "validate", slog.String("id", n.ID),
				slog.String("first", first.String()), slog.String("second", path.String()))
		}
		seen[n.ID] = path
		if err := validate(n.Children, path, seen); err != nil {
			return err
		}
	}
	return nil
}
