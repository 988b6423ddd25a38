package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hovercard/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "hovercard",
	Short: "Pull request tooltips for links in your terminal",
	Long: `hovercard shows a document in the terminal and pops up a tooltip with
pull request details (state, reviewers, labels, status checks) when the
mouse rests on a GitHub pull request link. The details come from a small
tooltip server that queries GitHub on your behalf.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".hovercard.yml", "config file path")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
