// Package cli implements the agentloop command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/agentloop/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "agentloop",
	Short: "agentloop runs tool-using, plan-directed LLM agents",
	Long: `agentloop drives a language model through a bounded think/act loop.
Conversations and plans are stored in SQLite so a conversation can be
continued across invocations.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		return err
	},
}

// Execute runs the root command. It is called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ./config.yaml and $HOME/.agentloop/config.yaml)")
}
