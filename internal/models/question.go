package models

import (
	"encoding/json"
	"fmt"
)

// QuestionType is the kind of answer a question expects. The values are the wire strings stored in snapshots.
type QuestionType string

const (
	TypeUnset       QuestionType = ""
	TypeShortAnswer QuestionType = "short"
	TypeBoolean     QuestionType = "boolean"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeUnset, TypeShortAnswer, TypeBoolean:
		return true
	default:
		return false
	}
}

// Answer is the tri-state answer of a boolean question. It encodes as JSON null, true or false.
type Answer int

const (
	AnswerUnset Answer = iota
	AnswerTrue
	AnswerFalse
)

// AnswerOf converts a boolean into an Answer.
func AnswerOf(b bool) Answer {
	if b {
		return AnswerTrue
	}
	return AnswerFalse
}

func (a Answer) String() string {
	switch a {
	case AnswerTrue:
		return "true"
	case AnswerFalse:
		return "false"
	case AnswerUnset:
		return "unset"
	default:
		return fmt.Sprintf("Answer(%d)", int(a))
	}
}

// MarshalJSON implements [json.Marshaler].
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a {
	case AnswerTrue:
		return []byte("true"), nil
	case AnswerFalse:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements [json.Unmarshaler].
func (a *Answer) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("answer must be a boolean or null: %w", err)
	}
	if b == nil {
		*a = AnswerUnset
		return nil
	}
	*a = AnswerOf(*b)
	return nil
}

// QuestionNode is one question of the form. Nodes are values: edits replace a whole node instead of changing
// its fields in place, so a node shared between two trees is never modified.
type QuestionNode struct {
	ID       string
	Text     string
	Type     QuestionType
	Answer   Answer
	Children []QuestionNode
}

// WithText returns a copy of the node with the prompt set to text.
func (n QuestionNode) WithText(text string) QuestionNode {
	n.Text = text
	return n
}

// WithType returns a copy of the node with the given type. Changing the type resets the answer.
// Children are kept even when the node stops accepting them.
func (n QuestionNode) WithType(t QuestionType) QuestionNode {
	if n.Type != t {
		n.Answer = AnswerUnset
	}
	n.Type = t
	return n
}

// WithAnswer returns a copy of the node with the given answer.
func (n QuestionNode) WithAnswer(a Answer) QuestionNode {
	n.Answer = a
	return n
}

// AcceptsChildren reports whether a surface should offer adding a child question to the node, i.e. it is a
// boolean question answered true.
func (n QuestionNode) AcceptsChildren() bool {
	return n.Type == TypeBoolean && n.Answer == AnswerTrue
}

// questionJSON is the wire shape of a QuestionNode.
type questionJSON struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Type     QuestionType   `json:"type"`
	Answer   Answer         `json:"answer"`
	Children []QuestionNode `json:"children"`
}

// MarshalJSON implements [json.Marshaler]. Children always encode as an array.
func (n QuestionNode) MarshalJSON() ([]byte, error) {
	children := n.Children
	if children == nil {
		children = []QuestionNode{}
	}
	return json.Marshal(questionJSON{
		ID:       n.ID,
		Text:     n.Text,
		Type:     n.Type,
		Answer:   n.Answer,
		Children: children,
	})
}

// UnmarshalJSON implements [json.Unmarshaler]. Missing or null children decode to an empty slice.
func (n *QuestionNode) UnmarshalJSON(data []byte) error {
	var wire questionJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err //nolint:wrapcheck // the json package reports the offending field.
	}
	if wire.Children == nil {
		wire.Children = []QuestionNode{}
	}
	*n = QuestionNode{
		ID:       wire.ID,
		Text:     wire.Text,
		Type:     wire.Type,
		Answer:   wire.Answer,
		Children: wire.Children,
	}
	return nil
}

// Tree is the ordered forest of top-level questions.
type Tree []QuestionNode

// MarshalJSON implements [json.Marshaler]. An empty tree encodes as [].
func (t Tree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]QuestionNode(t))
}

// Len returns the number of questions at all depths.
func (t Tree) Len() int {
	n := 0
	for _, q := range t {
		n += 1 + Tree(q.Children).Len()
	}
	return n
}
