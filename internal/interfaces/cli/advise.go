package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// NewAdviseCommand creates the advise command
func NewAdviseCommand(ro *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "advise [question]",
		Short: "Ask the business advisor",
		Long: `Without arguments, print three short tips drawn from current stock and
recent sales. With a question, answer it as a one-off chat turn.

The advisor never fails: when the model is unreachable a fallback
message is printed instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ro.openShop(cmd, false)
			if err != nil {
				return err
			}
			defer s.close()

			var reply string
			if question := strings.TrimSpace(strings.Join(args, " ")); question != "" {
				reply = s.advisor.Chat(cmd.Context(), nil, question)
			} else {
				reply = s.advisor.BusinessAdvice(cmd.Context())
			}
			return ro.formatter(cmd).Result(map[string]string{"reply": reply}, func(w io.Writer) {
				fmt.Fprintln(w, reply)
			})
		},
	}
}
