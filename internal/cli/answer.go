package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"yashubustudio/clinicalreport/internal/app"
)

var answerText = color.New(color.FgCyan, color.Bold).SprintFunc()

func newAnswerCmd(rt *runtime) *cobra.Command {
	var passage, question, example string
	cmd := &cobra.Command{
		Use:   "answer",
		Short: "Extract the answer to a question from a passage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if example != "" {
				ex, ok := app.FindQAExample(example)
				if !ok {
					return fmt.Errorf("unknown example %q", example)
				}
				passage, question = ex.Passage, ex.Question
			}
			if trimmed(passage) == "" || trimmed(question) == "" {
				return app.ErrMissingQAInput
			}
			svc, err := rt.service()
			if err != nil {
				return err
			}
			defer svc.Close()

			res, err := svc.Answer(cmd.Context(), passage, question)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Answer.Found() {
				fmt.Fprintln(out, "Answer: (no answer found)")
			} else {
				fmt.Fprintf(out, "Answer: %s\n", answerText(res.Answer.Text))
			}
			if res.Answer.Truncated {
				fmt.Fprintln(out, "Note: passage was truncated to fit the model input")
			}
			fmt.Fprintf(out, "Time: %.3fs\n", res.Elapsed.Seconds())
			return nil
		},
	}
	cmd.Flags().StringVarP(&passage, "passage", "p", "", "passage to search")
	cmd.Flags().StringVarP(&question, "question", "q", "", "question to answer")
	cmd.Flags().StringVar(&example, "example", "", "use a built-in QA example by name")
	return cmd
}
