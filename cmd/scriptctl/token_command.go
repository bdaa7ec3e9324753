package main

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/script-workspace/pkg/jwt"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the workspace API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			if !cfg.AuthEnabled() {
				return errors.New("AUTH_TOKEN_SECRET is not set; the server accepts requests without a token")
			}

			if subject == "" {
				subject = defaultSubject()
			}
			m := jwt.NewManager(cfg.Auth.TokenSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
			token, expiresAt, err := m.Generate(subject, ttl)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, map[string]any{
					"token":     token,
					"subject":   subject,
					"expiresAt": expiresAt.UTC().Format(time.RFC3339),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			if isTerminal(cmd.ErrOrStderr()) {
				fmt.Fprintf(cmd.ErrOrStderr(), "subject %s, expires %s\n", subject, humanize.Time(expiresAt))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Token subject (defaults to user@host)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to AUTH_TOKEN_TTL)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func defaultSubject() string {
	name := "scriptctl"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return name + "@" + host
	}
	return name
}
