package formtree

import (
	"strconv"

	"github.com/myrjola/formtree/internal/models"
)

// AssignNumbers derives the display number of every question: "Q<i>" at the top level and
// "<parent>.<i>" below, counting siblings from 1.
func AssignNumbers(tree models.Tree) models.NumberedTree {
	return number(tree, "")
}

func number(siblings []models.QuestionNode, prefix string) []models.NumberedNode {
	out := make([]models.NumberedNode, len(siblings))
	for i, n := range siblings {
		num := prefix + "." + strconv.Itoa(i+1)
		if prefix == "" {
			num = "Q" + strconv.Itoa(i+1)
		}
		out[i] = models.NumberedNode{
			ID:       n.ID,
			Text:     n.Text,
			Type:     n.Type,
			Answer:   n.Answer,
			Number:   num,
			Children: number(n.Children, num),
		}
	}
	return out
}
