package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hupe1980/agentloop/core"
)

var (
	runConversation string
	runKind         string
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <text>",
	Short: "Send a request to an agent and print the step summary",
	Long: `Run rebuilds the agent from the stored conversation, sends the request
and stores every new message. Without --conversation a new conversation is
started and its id is printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		go func() {
			select {
			case <-sigChan:
				cancel()
			case <-ctx.Done():
			}
		}()

		kind, err := core.ParseAgentKind(runKind)
		if err != nil {
			return err
		}

		conversationID := runConversation
		if conversationID == "" {
			conversationID = uuid.NewString()
		}

		logger := newLogger(cfg).WithConversation(conversationID)

		store, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		r, err := newRunner(cfg, store, logger)
		if err != nil {
			return err
		}

		res, err := r.Run(ctx, conversationID, kind, strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Conversation: %s\n", res.ConversationID)
		fmt.Fprintf(out, "State: %s (%d steps)\n\n", res.State, res.Steps)
		fmt.Fprintln(out, res.Output)
		if res.Plan != nil {
			fmt.Fprintf(out, "\n%s\n", res.Plan.Render())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runConversation, "conversation", "", "conversation id (default: new conversation)")
	runCmd.Flags().StringVar(&runKind, "kind", string(core.KindPlanning), "agent kind: react, tool or planning")
}
