package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/kgview/internal/ui"
	"github.com/OFFIS-RIT/kgview/pkg/ai"
	"github.com/OFFIS-RIT/kgview/pkg/client"
	"github.com/OFFIS-RIT/kgview/pkg/explorer"

	"github.com/spf13/cobra"
)

func explainCmd(opts *options) *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "explain ID",
		Short: "Highlight a concept's neighborhood and ask the model to explain it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sel, err := opts.open(ctx)
			if err != nil {
				return err
			}

			answered := make(chan explorer.Answer, 1)
			c := opts.controller(sel, opts.client(), func(f explorer.Frame) {
				if f.Answer.Pending || (f.Answer.Markdown == "" && f.Answer.Warning == "") {
					return
				}
				select {
				case answered <- f.Answer:
				default:
				}
			})
			go c.Run(ctx, opts.cfg.Explorer.TickInterval.Duration)

			out := cmd.OutOrStdout()
			id := strings.Join(args, " ")
			c.ClickNode(ctx, id)
			if meta := c.Meta(); meta.Label != id {
				printStatus(out, c.Status())
				return errReported
			}
			ui.Subtle.Fprintln(cmd.ErrOrStderr(), explorer.Querying)

			var ans explorer.Answer
			select {
			case ans = <-answered:
			case <-ctx.Done():
				return ctx.Err()
			}

			if ans.Warning != "" {
				fmt.Fprintf(out, "%s %s\n", ui.WarnIcon(), ui.Warn.Sprint(ans.Warning))
				if ans.Err != nil {
					return errReported
				}
			}
			if asHTML && ans.HTML != "" {
				fmt.Fprintln(out, ans.HTML)
				return nil
			}
			fmt.Fprintln(out, ans.Markdown)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "Print the rendered HTML instead of markdown")
	return cmd
}

func askCmd(opts *options) *cobra.Command {
	var (
		temperature float64
		maxTokens   int
	)

	cmd := &cobra.Command{
		Use:   "ask PROMPT",
		Short: "Send a prompt through the server's model proxy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.AskRequest{Prompt: strings.Join(args, " ")}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &temperature
			}
			if cmd.Flags().Changed("max-tokens") {
				req.MaxTokens = &maxTokens
			}

			answer, err := opts.client().Ask(cmd.Context(), req)
			if err != nil {
				return err
			}
			if answer == "" {
				answer = explorer.EmptyAnswer
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	cmd.Flags().Float64Var(&temperature, "temperature", ai.ExplainTemperature, "Sampling temperature")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", ai.ExplainMaxTokens, "Maximum answer tokens")
	return cmd
}
