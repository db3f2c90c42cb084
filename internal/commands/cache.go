package commands

import (
	"fmt"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/database"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached replies",
	}

	var session string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached replies for one session or all sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDBHook(loadConfigHook())
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			store := &cache.GormStore{DB: db}
			if session != "" {
				if err := store.DeleteSession(cmd.Context(), session); err != nil {
					return fmt.Errorf("failed to clear session %s: %w", session, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared cache for session %s\n", session)
				return nil
			}

			n, err := store.DeleteAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d cached replies\n", n)
			return nil
		},
	}
	clearCmd.Flags().StringVarP(&session, "session", "s", "", "Only clear this session id")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List cached replies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDBHook(loadConfigHook())
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			records, err := (&cache.GormStore{DB: db}).List(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cached replies.")
				return nil
			}
			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.SessionID, r.Key)
			}
			return nil
		},
	}

	cacheCmd.AddCommand(clearCmd)
	cacheCmd.AddCommand(listCmd)
	return cacheCmd
}
