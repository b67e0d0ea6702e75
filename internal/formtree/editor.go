// Package formtree holds the pure operations on question trees: creating nodes, path-addressed edits,
// numbering and validation.
//
// Every edit returns a new tree. The input is never modified and subtrees off the edited path are shared
// with the result.
package formtree

import (
	"log/slog"
	"slices"

	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/models"
)

var (
	ErrPathNotFound    = errors.NewSentinel("question path not found")
	ErrIndexOutOfRange = errors.NewSentinel("index out of range")
)

// leafEdit transforms the siblings containing the addressed node at index i. It must not modify siblings.
type leafEdit func(siblings []models.QuestionNode, i int) []models.QuestionNode

// editAt copies the nodes along path and applies edit at its last step.
func editAt(siblings []models.QuestionNode, path Path, depth int, edit leafEdit) ([]models.QuestionNode, error) {
	i := path[depth]
	if i < 0 || i >= len(siblings) {
		return nil, errors.Wrap(ErrPathNotFound, "index out of range at depth",
			slog.String("path", path.String()), slog.Int("depth", depth), slog.Int("siblings", len(siblings)))
	}
	if depth == len(path)-1 {
		return edit(siblings, i), nil
	}
	children, err := editAt(siblings[i].Children, path, depth+1, edit)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(siblings)
	out[i].Children = children
	return out, nil
}

func edit(tree models.Tree, path Path, leaf leafEdit) (models.Tree, error) {
	if len(path) == 0 {
		return nil, errors.Wrap(ErrPathNotFound, "empty path")
	}
	out, err := editAt(tree, path, 0, leaf)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceAt replaces the node at path with node. The id of node is not checked against the replaced node.
func ReplaceAt(tree models.Tree, path Path, node models.QuestionNode) (models.Tree, error) {
	return edit(tree, path, func(siblings []models.QuestionNode, i int) []models.QuestionNode {
		out := slices.Clone(siblings)
		out[i] = node
		return out
	})
}

// DeleteAt removes the node at path together with its subtree.
func DeleteAt(tree models.Tree, path Path) (models.Tree, error) {
	return edit(tree, path, func(siblings []models.QuestionNode, i int) []models.QuestionNode {
		out := make([]models.QuestionNode, 0, len(siblings)-1)
		out = append(out, siblings[:i]...)
		return append(out, siblings[i+1:]...)
	})
}

// AddChild appends child to the children of the node at path. The type and answer of the parent are not
// consulted; offering the action only for boolean questions answered true is up to the caller.
func AddChild(tree models.Tree, path Path, child models.QuestionNode) (models.Tree, error) {
	return edit(tree, path, func(siblings []models.QuestionNode, i int) []models.QuestionNode {
		out := slices.Clone(siblings)
		children := make([]models.QuestionNode, 0, len(siblings[i].Children)+1)
		children = append(children, siblings[i].Children...)
		out[i].Children = append(children, child)
		return out
	})
}

// AppendTopLevel adds node as the last top-level question.
func AppendTopLevel(tree models.Tree, node models.QuestionNode) models.Tree {
	out := make(models.Tree, 0, len(tree)+1)
	out = append(out, tree...)
	return append(out, node)
}

// ReorderTopLevel moves the top-level question at from to position to, shifting the questions in between by
// one. The same tree is returned when from equals to.
func ReorderTopLevel(tree models.Tree, from, to int) (models.Tree, error) {
	for _, idx := range []int{from, to} {
		if idx < 0 || idx >= len(tree) {
			return nil, errors.Wrap(ErrIndexOutOfRange, "reorder top level",
				slog.Int("from", from), slog.Int("to", to), slog.Int("len", len(tree)))
		}
	}
	if from == to {
		return tree, nil
	}
	node := tree[from]
	out := make(models.Tree, 0, len(tree))
	out = append(out, tree[:from]...)
	out = append(out, tree[from+1:]...)
	return slices.Insert(out, to, node), nil
}

// NodeAt returns the node at path.
func NodeAt(tree models.Tree, path Path) (models.QuestionNode, error) {
	if len(path) == 0 {
		return models.QuestionNode{}, errors.Wrap(ErrPathNotFound, "empty path")
	}
	siblings := []models.QuestionNode(tree)
	var node models.QuestionNode
	for depth, i := range path {
		if i < 0 || i >= len(siblings) {
			return models.QuestionNode{}, errors.Wrap(ErrPathNotFound, "index out of range at depth",
				slog.String("path", path.String()), slog.Int("depth", depth))
		}
		node = siblings[i]
		siblings = node.Children
	}
	return node, nil
}
