// Package commands implements the portfolioctl CLI.
package commands

import (
	"os"

	"portfolio-api/config"
	"portfolio-api/internal/chat"
	"portfolio-api/internal/database"

	"github.com/spf13/cobra"
)

var (
	loadConfigHook   = config.LoadConfig
	openDBHook       = database.Open
	newProvidersHook = chat.NewProviders
)

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "portfolioctl",
		Short: "Operate the portfolio assistant from a terminal",
		Long: `portfolioctl talks to the same assistant as the portfolio site and manages
its database.

Examples:
  portfolioctl ask "Bạn là ai?"            Ask one question
  portfolioctl ask --speak "Xin chào"      Ask and play the spoken answer
  portfolioctl ask                         Interactive session on stdin
  portfolioctl seed content.yaml           Load portfolio content
  portfolioctl cache clear                 Purge every cached reply
  portfolioctl hash-password               Hash the admin password from stdin`,
		SilenceUsage: true,
	}

	root.AddCommand(newAskCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newHashPasswordCmd())
	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
