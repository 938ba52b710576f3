package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/ponder/internal/cli"
	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/config"
	"github.com/Veraticus/ponder/internal/session"
	"github.com/spf13/cobra"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the signed-in session",
		Long: `Sign in with an access token issued by your hosted account, check who is
signed in, or sign out. Tokens are verified with auth.jwt_secret.`,
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authLogoutCmd())
	cmd.AddCommand(authStatusCmd())
	cmd.AddCommand(authIssueCmd())

	return cmd
}

func authLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [token]",
		Short: "Store an access token",
		Long:  `Verify an access token and store it. Without an argument the token is read from stdin.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := newJWTProvider(config.LoadAuth())
			if err != nil {
				return err
			}

			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				fmt.Fprint(cmd.ErrOrStderr(), "Paste your access token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = line
			}

			s, err := provider.Login(token)
			if err != nil {
				return common.NewUserError("sign-in failed", err)
			}

			who := s.UserID
			if s.Email != "" {
				who = s.Email
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Signed in as %s until %s",
				who, s.ExpiresAt.Local().Format(time.RFC1123))))
			return nil
		},
	}
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.LoadAuth().TokenPath
			if path == "" {
				path = session.DefaultTokenPath
			}
			if err := session.NewFileTokenStore(path).Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Signed out"))
			return nil
		},
	}
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who decisions are recorded for",
		RunE: func(cmd *cobra.Command, _ []string) error {
			storeCfg, err := config.LoadStore()
			if err != nil {
				return err
			}
			sessions, err := initSessions(storeCfg.Backend)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			s, err := sessions.Current(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, cli.FormatWarning(err.Error()))
				return nil
			}

			lines := []string{fmt.Sprintf("User:    %s", s.UserID)}
			if s.Email != "" {
				lines = append(lines, fmt.Sprintf("Email:   %s", s.Email))
			}
			if !s.ExpiresAt.IsZero() {
				lines = append(lines, fmt.Sprintf("Expires: %s", s.ExpiresAt.Local().Format(time.RFC1123)))
			}
			lines = append(lines, fmt.Sprintf("Backend: %s", storeCfg.Backend))
			fmt.Fprintln(out, cli.RenderBox("Session", strings.Join(lines, "\n")))
			return nil
		},
	}
}

func authIssueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a development token with the configured secret",
		Long: `Sign an access token for a user with auth.jwt_secret. Useful for local
and self-hosted setups that do not have an identity provider.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, _ := cmd.Flags().GetString("user-id")
			email, _ := cmd.Flags().GetString("email")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			login, _ := cmd.Flags().GetBool("login")

			auth := config.LoadAuth()
			token, err := session.Issue([]byte(auth.JWTSecret), userID, email, ttl)
			if err != nil {
				return err
			}

			if !login {
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			}

			provider, err := newJWTProvider(auth)
			if err != nil {
				return err
			}
			if _, err := provider.Login(token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Signed in as "+userID))
			return nil
		},
	}

	cmd.Flags().String("user-id", "", "User id for the sub claim")
	cmd.Flags().String("email", "", "Email claim")
	cmd.Flags().Duration("ttl", 24*time.Hour, "How long the token stays valid")
	cmd.Flags().Bool("login", false, "Store the token instead of printing it")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}
