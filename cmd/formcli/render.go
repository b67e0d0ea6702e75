package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/myrjola/formtree/internal/models"
)

var (
	colorPurple = lipgloss.Color("#d3869b")
	colorBlue   = lipgloss.Color("#83a598")
	colorGreen  = lipgloss.Color("#8ec07c")
	colorRed    = lipgloss.Color("#fb4934")
	colorDim    = lipgloss.Color("#928374")
	colorFg     = lipgloss.Color("#ebdbb2")
	colorHeader = lipgloss.Color("#fe8019")
)

var (
	styleNumber = lipgloss.NewStyle().Foreground(colorPurple).Bold(true)
	styleText   = lipgloss.NewStyle().Foreground(colorFg)
	styleEmpty  = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	styleType   = lipgloss.NewStyle().Foreground(colorBlue)
	styleYes    = lipgloss.NewStyle().Foreground(colorGreen)
	styleNo     = lipgloss.NewStyle().Foreground(colorRed)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
)

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

const emptyForm = "No questions yet. Add one with: formcli add"

// renderTree draws the numbered form as an indented tree.
func renderTree(tree models.NumberedTree) string {
	if len(tree) == 0 {
		return styleEmpty.Render(emptyForm) + "\n"
	}
	var sb strings.Builder
	sb.WriteString(styleHeader.Render("FORM"))
	sb.WriteString("\n")
	for _, node := range tree {
		sb.WriteString(renderLine(node))
		sb.WriteString("\n")
		renderChildren(&sb, node.Children, "")
	}
	return sb.String()
}

func renderChildren(sb *strings.Builder, children []models.NumberedNode, prefix string) {
	for i, child := range children {
		last := i == len(children)-1
		connector, indent := treeBranch, treePipe
		if last {
			connector, indent = treeCorner, treeBlank
		}
		sb.WriteString(styleDim.Render(prefix + connector))
		sb.WriteString(renderLine(child))
		sb.WriteString("\n")
		renderChildren(sb, child.Children, prefix+indent)
	}
}

func renderLine(node models.NumberedNode) string {
	parts := []string{styleNumber.Render(node.Number)}
	if node.Text == "" {
		parts = append(parts, styleEmpty.Render("(empty question)"))
	} else {
		parts = append(parts, styleText.Render(node.Text))
	}
	if node.Type != models.TypeUnset {
		parts = append(parts, styleType.Render(fmt.Sprintf("[%s]", node.Type)))
	}
	switch node.Answer {
	case models.AnswerTrue:
		parts = append(parts, styleYes.Render("yes"))
	case models.AnswerFalse:
		parts = append(parts, styleNo.Render("no"))
	case models.AnswerUnset:
	}
	return strings.Join(parts, " ")
}
