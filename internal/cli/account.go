package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pharmastudy/internal/client"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

// readPassword takes the password from the flag or, when the flag is empty,
// from the first line of stdin.
func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) registerCommand() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			result, err := a.client.Register(cmd.Context(), name, email, pw)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), result.User, func(w io.Writer) {
				fmt.Fprintf(w, "Registered %s <%s>\n", result.User.Name, result.User.Email)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	return cmd
}

func (a *app) loginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			result, err := a.client.Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), result.User, func(w io.Writer) {
				fmt.Fprintf(w, "Signed in as %s <%s>\n", result.User.Name, result.User.Email)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), user, func(w io.Writer) {
				printUser(w, user)
			})
		},
	}
}

func printUser(w io.Writer, u *entities.User) {
	fmt.Fprintf(w, "%s <%s>\n", u.Name, u.Email)
	fmt.Fprintf(w, "id: %s\n", u.ID)
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show API configuration and on-device data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := a.client.Status(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), status, func(w io.Writer) {
				printStatus(w, status)
			})
		},
	}
}

func printStatus(w io.Writer, s client.Status) {
	if s.Configured {
		fmt.Fprintf(w, "API:            %s\n", s.APIURL)
	} else {
		fmt.Fprintln(w, "API:            not configured (local only)")
	}
	fmt.Fprintf(w, "Remote token:   %s\n", yesNo(s.HasToken))
	fmt.Fprintf(w, "Local session:  %s\n", yesNo(s.LocalSession))
	fmt.Fprintf(w, "Local users:    %d\n", s.LocalUsers)
	fmt.Fprintf(w, "Local chapters: %d\n", s.LocalChapters)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
