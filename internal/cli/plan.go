package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/plan"
)

var planConversation string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the latest plan of a conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger(cfg)

		store, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		sp, err := store.LatestPlan(ctx, planConversation)
		if errors.Is(err, core.ErrPlanNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "No plan for conversation %s\n", planConversation)
			return nil
		}
		if err != nil {
			return err
		}

		p := plan.FromStored(sp)
		fmt.Fprintln(cmd.OutOrStdout(), p.Render())
		for _, s := range p.Steps {
			if s.Result != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nStep %d result:\n%s\n", s.ID, s.Result)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVar(&planConversation, "conversation", "", "conversation id")
	_ = planCmd.MarkFlagRequired("conversation")
}
