package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"portfolio-api/internal/util"

	"github.com/spf13/cobra"
)

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print an ADMIN_PASSWORD_HASH value",
		Long: `Hashes the admin password with bcrypt. Without an argument the password is
read from the first line of stdin, which keeps it out of shell history.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				if scanner.Scan() {
					password = scanner.Text()
				}
				if err := scanner.Err(); err != nil {
					return err
				}
			}

			password = strings.TrimRight(password, "\r\n")
			if password == "" {
				return errors.New("password is required")
			}

			hash, err := util.HashPassword(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ADMIN_PASSWORD_HASH=%s\n", hash)
			return nil
		},
	}
}
