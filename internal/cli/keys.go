package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thatlq1812/sitetools/internal/auth"
)

func newHashAdminKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-admin-key [key]",
		Short: "Print a bcrypt hash for ADMIN_API_KEY_HASH",
		Long: `Print a bcrypt hash of the admin API key for ADMIN_API_KEY_HASH.
Without an argument the key is read from the first line of stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read key from stdin: %w", err)
				}
				key = strings.TrimRight(line, "\r\n")
			}
			if key == "" {
				return fmt.Errorf("admin key must not be empty")
			}

			hash, err := auth.HashAdminKey(key)
			if err != nil {
				return fmt.Errorf("hash admin key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newIssueTokenCommand() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Sign an access token with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			token, err := auth.NewAuthenticator(cfg.Auth.JWTSecret).IssueToken(userID, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the user_id claim")
	cmd.Flags().StringVar(&role, "role", "user", "platform_role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
