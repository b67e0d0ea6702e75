package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/formtree"
	"github.com/myrjola/formtree/internal/models"
	"github.com/spf13/cobra"
)

const (
	groupEdit = "edit"
	groupView = "view"
)

var errRefused = errors.NewSentinel("refused")

func newRootCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	rootCmd := &cobra.Command{ //nolint:exhaustruct // cobra defaults
		Use:   "formcli",
		Short: "Build a nested yes/no questionnaire",
		Long: `formcli edits a questionnaire of nested questions. A boolean question answered yes can have
follow-up questions. Every change is kept in a local cache and sent to the form server.

Questions are addressed by their number, e.g. Q2.1 is the first follow-up of the second question.`,
		SilenceUsage: true,
	}
	addConfigFlags(rootCmd)
	rootCmd.AddGroup(
		&cobra.Group{ID: groupView, Title: "View:"},
		&cobra.Group{ID: groupEdit, Title: "Edit:"},
	)
	rootCmd.AddCommand(
		newShowCmd(lookupEnv),
		newSubmitCmd(lookupEnv),
		newAddCmd(lookupEnv),
		newAddChildCmd(lookupEnv),
		newSetCmd(lookupEnv),
		newDeleteCmd(lookupEnv),
		newMoveCmd(lookupEnv),
		newClearCmd(lookupEnv),
	)
	return rootCmd
}

func newShowCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // cobra defaults
		Use:     "show",
		Short:   "Show the numbered form",
		GroupID: groupView,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, lookupEnv, func(_ context.Context, s *session) error {
				return s.show()
			})
		},
	}
}

func newSubmitCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra defaults
		Use:     "submit",
		Short:   "Print the numbered form as a submission",
		GroupID: groupView,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, lookupEnv, func(_ context.Context, s *session) error {
				if !asJSON {
					return s.show()
				}
				enc := json.NewEncoder(s.out)
				enc.SetIndent("", "  ")
				return errors.Wrap(enc.Encode(s.form.Submit()), "encode submission")
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the submission as JSON")
	return cmd
}

// nodeFlags are the question fields that can be given on the command line.
type nodeFlags struct {
	text   string
	typ    string
	answer string
}

func (f *nodeFlags) register(cmd *cobra.Command, withAnswer bool) {
	cmd.Flags().StringVar(&f.text, "text", "", "question prompt")
	cmd.Flags().StringVar(&f.typ, "type", "", "question type: short, boolean or unset")
	if withAnswer {
		cmd.Flags().StringVar(&f.answer, "answer", "", "answer of a boolean question: yes, no or unset")
	}
}

// apply updates node with the flags the user set explicitly.
func (f *nodeFlags) apply(cmd *cobra.Command, node models.QuestionNode) (models.QuestionNode, error) {
	if cmd.Flags().Changed("text") {
		node = node.WithText(f.text)
	}
	if cmd.Flags().Changed("type") {
		typ, err := parseType(f.typ)
		if err != nil {
			return node, err
		}
		node = node.WithType(typ)
	}
	if cmd.Flags().Changed("answer") {
		answer, err := parseAnswer(f.answer)
		if err != nil {
			return node, err
		}
		if answer != models.AnswerUnset && node.Type != models.TypeBoolean {
			return node, fmt.Errorf("%w: only boolean questions take an answer", errRefused)
		}
		node = node.WithAnswer(answer)
	}
	return node, nil
}

func parseType(s string) (models.QuestionType, error) {
	typ := models.QuestionType(strings.ToLower(strings.TrimSpace(s)))
	switch typ {
	case "unset", "none":
		typ = models.TypeUnset
	case "short-answer", "text":
		typ = models.TypeShortAnswer
	case "bool", "yes/no":
		typ = models.TypeBoolean
	}
	if !typ.Valid() {
		return models.TypeUnset, fmt.Errorf("unknown question type %q", s)
	}
	return typ, nil
}

func parseAnswer(s string) (models.Answer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unset", "none":
		return models.AnswerUnset, nil
	case "yes", "true", "y":
		return models.AnswerTrue, nil
	case "no", "false", "n":
		return models.AnswerFalse, nil
	default:
		return models.AnswerUnset, fmt.Errorf("unknown answer %q", s)
	}
}

func newAddCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	var flags nodeFlags
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra defaults
		Use:     "add",
		Short:   "Append a top-level question",
		GroupID: groupEdit,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, lookupEnv, func(ctx context.Context, s *session) error {
				node, err := flags.apply(cmd, formtree.NewNode())
				if err != nil {
					return err
				}
				if err = s.form.AddQuestion(ctx, node); err != nil {
					return errors.Wrap(err, "add question")
				}
				return s.show()
			})
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newAddChildCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	var (
		flags nodeFlags
		force bool
	)
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra defaults
		Use:     "add-child <number>",
		Short:   "Add a follow-up question to a boolean question answered yes",
		GroupID: groupEdit,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := formtree.ParsePath(args[0])
			if err != nil {
				return errors.Wrap(err, "parse question number")
			}
			return withSession(cmd, lookupEnv, func(ctx context.Context, s *session) error {
				var parent models.QuestionNode
				if parent, err = formtree.NodeAt(s.form.Tree(), path); err != nil {
					return errors.Wrap(err, "find question", slog.String("number", path.String()))
				}
				if !parent.AcceptsChildren() && !force {
					return fmt.Errorf("%w: %s is not a boolean question answered yes, use --force to add anyway",
						errRefused, path)
				}
				var node models.QuestionNode
				if node, err = flags.apply(cmd, formtree.NewNode()); err != nil {
					return err
				}
				if err = s.form.AddChild(ctx, path, node); err != nil {
					return errors.Wrap(err, "add follow-up question")
				}
				return s.show()
			})
		},
	}
	flags.register(cmd, false)
	cmd.Flags().BoolVar(&force, "force", false, "add even if the question does not accept follow-ups")
	return cmd
}

func newSetCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	var flags nodeFlags
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra defaults
		Use:     "set <number>",
		Short:   "Change the text, type or answer of a question",
		GroupID: groupEdit,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := formtree.ParsePath(args[0])
			if err != nil {
				return errors.Wrap(err, "parse question number")
			}
			return withSession(cmd, lookupEnv, func(ctx context.Context, s *session) error {
				if err = s.form.Update(ctx, path, func(node models.QuestionNode) (models.QuestionNode, error) {
					return flags.apply(cmd, node)
				}); err != nil {
					return errors.Wrap(err, "update question", slog.String("number", path.String()))
				}
				return s.show()
			})
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newDeleteCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // cobra defaults
		Use:     "delete <number>",
		Short:   "Delete a question with its follow-ups",
		GroupID: groupEdit,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := formtree.ParsePath(args[0])
			if err != nil {
				return errors.Wrap(err, "parse question number")
			}
			return withSession(cmd, lookupEnv, func(ctx context.Context, s *session) error {
				if err = s.form.Delete(ctx, path); err != nil {
					return errors.Wrap(err, "delete question", slog.String("number", path.String()))
				}
				return s.show()
			})
		},
	}
}

func newMoveCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // cobra defaults
		Use:     "move <from> <to>",
		Short:   "Move a top-level question to another position",
		Long:    "Positions count from 1. move 3 1 makes the third question the first one.",
		GroupID: groupEdit,
		Args:    cobra.ExactArgs(2), //nolint:mnd // from and to
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			var to int
			if to, err = parsePosition(args[1]); err != nil {
				return err
			}
			return withSession(cmd, lookupEnv, func(ctx context.Context, s *session) error {
				if err = s.form.Reorder(ctx, from, to); err != nil {
					return errors.Wrap(err, "move question")
				}
				return s.show()
			})
		},
	}
}

// parsePosition converts a 1-based position, optionally written as a question number like Q3, to an index.
func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "Q"), "q"))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return n - 1, nil
}

func newClearCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // cobra defaults
		Use:     "clear",
		Short:   "Start over with an empty form",
		Long:    "clear erases the local cache and replaces the form on the server with an empty one.",
		GroupID: groupEdit,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, lookupEnv, func(ctx context.Context, s *session) error {
				if err := s.form.Clear(ctx); err != nil {
					return errors.Wrap(err, "clear form")
				}
				return s.show()
			})
		},
	}
}
