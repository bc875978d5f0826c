package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

// These commands only touch on-device data; the API has no admin surface.

func (a *app) usersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts stored on this device",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List on-device accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := a.client.Local().Accounts(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), users, func(w io.Writer) {
				printUsers(w, users)
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an on-device account; its chapters are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Local().DeleteAccount(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, del)
	return cmd
}

func printUsers(w io.Writer, users []entities.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No on-device accounts")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.CreatedAt.Format("2006-01-02"))
	}
	tw.Flush()
}

var errResetAborted = errors.New("reset aborted")

func (a *app) resetCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all on-device data: accounts, session, chapters, flashcards and quizzes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				fmt.Fprint(cmd.ErrOrStderr(), "This deletes all on-device data. Type yes to continue: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return err
				}
				if strings.TrimSpace(line) != "yes" {
					return errResetAborted
				}
			}
			if err := a.client.Local().Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All on-device data cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}
