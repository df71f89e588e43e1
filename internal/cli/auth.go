package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/johanforsgren/mantella/internal/config"
	"github.com/johanforsgren/mantella/internal/session"
)

func newLoginCmd(svc func() *session.Service, cfg func() config.Config) *cobra.Command {
	var server, username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store an app password",
		Long: "Exchanges your login password for an app password and stores it. " +
			"An existing app password is accepted as is. " +
			"Server and user default to the configured values.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" {
				server = cfg().Server
			}
			if username == "" {
				username = cfg().Username
			}
			if password == "" {
				var err error
				if password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
					return err
				}
			}

			cred, err := svc().Login(cmd.Context(), server, username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s signed in as %s on %s\n",
				SuccessStyle.Render("✓"), cred.Username, InfoStyle.Render(cred.Server))
			return nil
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "", "Nextcloud server URL")
	cmd.Flags().StringVarP(&username, "user", "u", "", "account name")
	cmd.Flags().StringVar(&password, "password", "", "password or app password (prompted when omitted)")
	return cmd
}

// readPassword prompts without echo on a terminal and otherwise reads one
// line from in.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(svc func() *session.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential and revoke it on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc().Logout(cmd.Context()); err != nil {
				return err
			}
			svc().Wait()
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓")+" signed out")
			return nil
		},
	}
}

func newWhoamiCmd(svc func() *session.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := svc().CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if cred == nil {
				fmt.Fprintln(cmd.OutOrStdout(), MutedStyle.Render("not signed in"))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s on %s\n", cred.Username, InfoStyle.Render(cred.Server))
			return nil
		},
	}
}
