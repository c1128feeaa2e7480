package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/soyeahso/arena/internal/agent"
	"github.com/soyeahso/arena/internal/domain"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var (
		chatID  string
		persist bool
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a message to the assistant and print the response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")

			rt, err := buildRuntime(log, persist)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			result, err := rt.loop.Run(ctx,
				domain.SessionKey{Surface: "cli", ChatID: chatID},
				domain.Input{Text: message},
			)
			if err != nil {
				return err
			}

			fmt.Println(result.Response)

			state := ""
			if result.State != agent.StateDone {
				state = " state=" + string(result.State)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "\n[model=%s tools=%d tokens=%d+%d%s]\n",
				result.Model, result.ToolCalls,
				result.Usage.InputTokens, result.Usage.OutputTokens, state)

			return nil
		},
	}

	cmd.Flags().StringVar(&chatID, "chat", "local", "chat ID, messages with the same ID share a session")
	cmd.Flags().BoolVar(&persist, "persist", true, "keep the conversation in the configured session store")

	return cmd
}
