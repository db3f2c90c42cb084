package commands

import (
	"fmt"

	"portfolio-api/internal/database"
	"portfolio-api/internal/profile"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [content-file]",
		Short: "Replace portfolio content with a YAML file",
		Long:  `Reads the content file (default: CONTENT_FILE) and replaces the profile, experience, projects and skills tables.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfigHook()
			path := cfg.ContentFile
			if len(args) == 1 {
				path = args[0]
			}

			db, err := openDBHook(cfg)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			ps := &profile.ProfileService{DB: db}
			c, err := ps.Reload(path)
			if err != nil {
				return fmt.Errorf("failed to seed from %s: %w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s: %d projects, %d skills, %d experiences\n",
				path, len(c.Projects), len(c.Skills), len(c.Experiences))
			return nil
		},
	}
}
