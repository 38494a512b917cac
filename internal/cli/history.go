package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/internal/util"
)

var (
	historyConversation string
	historyWidth        int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the stored messages of a conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger(cfg)

		store, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		msgs, err := store.Messages(ctx, historyConversation)
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No messages for conversation %s\n", historyConversation)
			return nil
		}
		printMessages(cmd.OutOrStdout(), msgs, historyWidth)
		return nil
	},
}

func printMessages(w io.Writer, msgs []core.Message, width int) {
	for i, m := range msgs {
		content := m.Content
		if width > 0 {
			content = util.Truncate(content, width)
		}
		switch {
		case m.Role == core.RoleTool:
			fmt.Fprintf(w, "%3d [%s %s] %s\n", i+1, m.Role, m.Name, content)
		case len(m.ToolCalls) > 0:
			fmt.Fprintf(w, "%3d [%s] %s\n", i+1, m.Role, content)
			for _, c := range m.ToolCalls {
				fmt.Fprintf(w, "      -> %s(%s)\n", c.Function.Name, c.Function.Arguments)
			}
		default:
			fmt.Fprintf(w, "%3d [%s] %s\n", i+1, m.Role, content)
		}
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyConversation, "conversation", "", "conversation id")
	historyCmd.Flags().IntVar(&historyWidth, "width", 200, "truncate message content to this many characters (0 disables)")
	_ = historyCmd.MarkFlagRequired("conversation")
}
