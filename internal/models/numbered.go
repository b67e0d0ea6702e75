package models

import "encoding/json"

// NumberedNode is a QuestionNode with its derived display number, e.g. "Q2.1". It is a disposable view that
// is recomputed from the tree shape and never persisted as the source of truth.
type NumberedNode struct {
	ID       string
	Text     string
	Type     QuestionType
	Answer   Answer
	Number   string
	Children []NumberedNode
}

// NumberedTree is a numbered view of a [Tree].
type NumberedTree []NumberedNode

// Question returns the node without its number.
func (n NumberedNode) Question() QuestionNode {
	return QuestionNode{
		ID:       n.ID,
		Text:     n.Text,
		Type:     n.Type,
		Answer:   n.Answer,
		Children: NumberedTree(n.Children).Tree(),
	}
}

// Tree strips the numbers and returns the underlying question tree.
func (t NumberedTree) Tree() Tree {
	tree := make(Tree, len(t))
	for i, n := range t {
		tree[i] = n.Question()
	}
	return tree
}

// Numbers lists the numbers of all nodes in depth-first order.
func (t NumberedTree) Numbers() []string {
	var numbers []string
	for _, n := range t {
		numbers = append(numbers, n.Number)
		numbers = append(numbers, NumberedTree(n.Children).Numbers()...)
	}
	return numbers
}

type numberedJSON struct {
	ID       string         `json:"id"`
	Number   string         `json:"number"`
	Text     string         `json:"text"`
	Type     QuestionType   `json:"type"`
	Answer   Answer         `json:"answer"`
	Children []NumberedNode `json:"children"`
}

// MarshalJSON implements [json.Marshaler].
func (n NumberedNode) MarshalJSON() ([]byte, error) {
	children := n.Children
	if children == nil {
		children = []NumberedNode{}
	}
	return json.Marshal(numberedJSON{
		ID:       n.ID,
		Number:   n.Number,
		Text:     n.Text,
		Type:     n.Type,
		Answer:   n.Answer,
		Children: children,
	})
}

// UnmarshalJSON implements [json.Unmarshaler].
func (n *NumberedNode) UnmarshalJSON(data []byte) error {
	var wire numberedJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err //nolint:wrapcheck // the json package reports the offending field.
	}
	if wire.Children == nil {
		wire.Children = []NumberedNode{}
	}
	*n = NumberedNode{
		ID:       wire.ID,
		Text:     wire.Text,
		Type:     wire.Type,
		Answer:   wire.Answer,
		Number:   wire.Number,
		Children: wire.Children,
	}
	return nil
}

// MarshalJSON implements [json.Marshaler]. An empty tree encodes as [].
func (t NumberedTree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]NumberedNode(t))
}
