package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

func (a *app) searchCommand() *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search items, chapters and topics by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.client.Search(cmd.Context(), strings.Join(args, " "), typ)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), results, func(w io.Writer) {
				printResults(w, results)
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "only items of this type")
	return cmd
}

func printResults(w io.Writer, r entities.SearchResults) {
	if len(r.Items)+len(r.Chapters)+len(r.Topics) == 0 {
		fmt.Fprintln(w, "No matches")
		return
	}
	if len(r.Chapters) > 0 {
		fmt.Fprintln(w, "Chapters:")
		for _, c := range r.Chapters {
			fmt.Fprintf(w, "  %s  %s\n", c.ID, c.Name)
		}
	}
	if len(r.Topics) > 0 {
		fmt.Fprintln(w, "Topics:")
		for _, t := range r.Topics {
			fmt.Fprintf(w, "  %s  %s\n", t.ID, t.Name)
		}
	}
	if len(r.Items) > 0 {
		fmt.Fprintln(w, "Items:")
		for _, i := range r.Items {
			where := ""
			if i.Topic != nil {
				where = " in " + i.Topic.Name
			}
			fmt.Fprintf(w, "  %s  %s (%s)%s\n", i.ID, i.Name, i.Type, where)
		}
	}
}
