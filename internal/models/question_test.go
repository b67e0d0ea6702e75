package models_test

import (
	"encoding/json"
	"testing"

	"github.com/myrjola/formtree/internal/models"
	"github.com/stretchr/testify/require"
)

func TestQuestionNode_JSON(t *testing.T) {
	tests := []struct {
		name string
		node models.QuestionNode
		want string
	}{
		{
			name: "fresh node",
			node: models.QuestionNode{ID: "1"},
			want: `{"id":"1","text":"","type":"","answer":null,"children":[]}`,
		},
		{
			name: "boolean answered true with child",
			node: models.QuestionNode{
				ID:     "1",
				Text:   "Do you drive?",
				Type:   models.TypeBoolean,
				Answer: models.AnswerTrue,
				Children: []models.QuestionNode{
					{ID: "2", Text: "Which car?", Type: models.TypeShortAnswer},
				},
			},
			want: `{"id":"1","text":"Do you drive?","type":"boolean","answer":true,"children":[` +
				`{"id":"2","text":"Which car?","type":"short","answer":null,"children":[]}]}`,
		},
		{
			name: "boolean answered false",
			node: models.QuestionNode{ID: "3", Type: models.TypeBoolean, Answer: models.AnswerFalse},
			want: `{"id":"3","text":"","type":"boolean","answer":false,"children":[]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.node)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestQuestionNode_UnmarshalJSON_missingChildren(t *testing.T) {
	var node models.QuestionNode
	err := json.Unmarshal([]byte(`{"id":"9","text":"Age?","type":"short","answer":null}`), &node)
	require.NoError(t, err)
	require.Equal(t, models.QuestionNode{
		ID:       "9",
		Text:     "Age?",
		Type:     models.TypeShortAnswer,
		Answer:   models.AnswerUnset,
		Children: []models.QuestionNode{},
	}, node)
}

func TestAnswer_UnmarshalJSON_rejectsNonBoolean(t *testing.T) {
	var a models.Answer
	require.Error(t, json.Unmarshal([]byte(`"yes"`), &a))
}

func TestTree_MarshalJSON_empty(t *testing.T) {
	var tree models.Tree
	got, err := json.Marshal(tree)
	require.NoError(t, err)
	require.Equal(t, "[]", string(got))
}

func TestQuestionNode_WithType(t *testing.T) {
	child := models.QuestionNode{ID: "c", Children: []models.QuestionNode{}}
	node := models.QuestionNode{
		ID:       "p",
		Type:     models.TypeBoolean,
		Answer:   models.AnswerTrue,
		Children: []models.QuestionNode{child},
	}
	require.True(t, node.AcceptsChildren())

	changed := node.WithType(models.TypeShortAnswer)
	require.Equal(t, models.AnswerUnset, changed.Answer)
	require.False(t, changed.AcceptsChildren())
	require.Equal(t, []models.QuestionNode{child}, changed.Children, "children survive a type change")
	require.Equal(t, models.AnswerTrue, node.Answer, "receiver is not modified")

	same := node.WithType(models.TypeBoolean)
	require.Equal(t, models.AnswerTrue, same.Answer, "answer is kept when the type does not change")
}

func TestTree_Len(t *testing.T) {
	tree := models.Tree{
		{ID: "1", Children: []models.QuestionNode{{ID: "1.1"}, {ID: "1.2", Children: []models.QuestionNode{{ID: "x"}}}}},
		{ID: "2"},
	}
	require.Equal(t, 5, tree.Len())
}

func TestNumberedTree_Tree(t *testing.T) {
	numbered := models.NumberedTree{
		{ID: "1", Number: "Q1", Children: []models.NumberedNode{{ID: "2", Number: "Q1.1"}}},
	}
	require.Equal(t, []string{"Q1", "Q1.1"}, numbered.Numbers())
	tree := numbered.Tree()
	require.Equal(t, "1", tree[0].ID)
	require.Equal(t, "2", tree[0].Children[0].ID)

	got, err := json.Marshal(numbered)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"1","number":"Q1","text":"","type":"","answer":null,"children":[`+
		`{"id":"2","number":"Q1.1","text":"","type":"","answer":null,"children":[]}]}]`, string(got))
}
