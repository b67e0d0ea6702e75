package formtree

import (
	"github.com/google/uuid"
	"github.com/myrjola/formtree/internal/models"
)

// NewNode creates an empty question with a fresh random id.
func NewNode() models.QuestionNode {
	return models.QuestionNode{
		ID:       uuid.NewString(),
		Text:     "",
		Type:     models.TypeUnset,
		Answer:   models.AnswerUnset,
		Children: []models.QuestionNode{},
	}
}
