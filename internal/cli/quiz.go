package cli

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/quiz"
)

func (a *app) quizCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Generate and take multiple-choice quizzes",
	}

	var (
		filter quiz.Filter
		name   string
		seed   uint64
	)
	take := &cobra.Command{
		Use:   "new",
		Short: "Generate a quiz, ask it on stdin and save the score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			chapters, err := a.client.ListChapters(cmd.Context())
			if err != nil {
				return err
			}

			var rng *rand.Rand
			if cmd.Flags().Changed("seed") {
				rng = rand.New(rand.NewPCG(seed, seed))
			}
			questions := quiz.Generate(chapters, filter, rng)
			if len(questions) == 0 {
				return fmt.Errorf("no flashcards or quizzable properties to ask about")
			}

			if name == "" {
				name = "Quiz " + time.Now().Format("2006-01-02 15:04")
			}
			q := quiz.New(name, filter, questions, time.Now())

			answers := ask(cmd.InOrStdin(), cmd.OutOrStdout(), questions, !a.jsonOut)
			q.Answered = len(answers)
			q.Score = quiz.Score(questions, answers)

			saved, err := a.client.SaveQuiz(cmd.Context(), q)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), saved, func(w io.Writer) {
				fmt.Fprintf(w, "\nScore: %d/%d\n", saved.Score, len(saved.Questions))
			})
		},
	}
	take.Flags().StringVar(&filter.ChapterID, "chapter", "", "only items from this chapter")
	take.Flags().StringVar(&filter.TopicID, "topic", "", "only items from this topic")
	take.Flags().StringVar(&name, "name", "", "quiz name")
	take.Flags().Uint64Var(&seed, "seed", 0, "random seed for a repeatable quiz")

	list := &cobra.Command{
		Use:   "list",
		Short: "Show saved quizzes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			quizzes, err := a.client.ListQuizzes(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), quizzes, func(w io.Writer) {
				if len(quizzes) == 0 {
					fmt.Fprintln(w, "No quizzes yet")
					return
				}
				for _, q := range quizzes {
					fmt.Fprintf(w, "%s  %s  %d/%d\n", q.CreatedAt.Format("2006-01-02 15:04"), q.Name, q.Score, len(q.Questions))
				}
			})
		},
	}

	cmd.AddCommand(take, list)
	return cmd
}

// ask prints each question and reads a 1-based option number per line.
// Input ends at EOF; unanswered questions are left out of the result, and
// an unreadable line counts as a wrong answer.
func ask(in io.Reader, out io.Writer, questions []entities.QuizQuestion, feedback bool) []int {
	scanner := bufio.NewScanner(in)
	answers := make([]int, 0, len(questions))

	for n, q := range questions {
		if feedback {
			fmt.Fprintf(out, "\n%d. %s\n", n+1, q.Question)
			for i, opt := range q.Options {
				fmt.Fprintf(out, "   %d) %s\n", i+1, opt)
			}
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || choice < 1 || choice > len(q.Options) {
			choice = 0
		}
		answers = append(answers, choice-1)

		if !feedback {
			continue
		}
		if choice-1 == q.CorrectAnswer {
			fmt.Fprintln(out, "Correct")
		} else {
			fmt.Fprintf(out, "Wrong, the answer is %s\n", q.Options[q.CorrectAnswer])
		}
		if q.Explanation != "" {
			fmt.Fprintln(out, q.Explanation)
		}
	}
	return answers
}
