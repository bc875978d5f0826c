package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

func (a *app) flashcardsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "flashcards",
		Aliases: []string{"cards"},
		Short:   "Manage flashcards",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show every flashcard with its item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cards, err := a.client.ListFlashcards(cmd.Context())
			if err != nil {
				return err
			}
			if pending, _ := cmd.Flags().GetBool("pending"); pending {
				cards = unmastered(cards)
			}
			return a.emit(cmd.OutOrStdout(), cards, func(w io.Writer) {
				printCards(w, cards)
			})
		},
	}
	list.Flags().Bool("pending", false, "only cards not yet mastered")

	create := &cobra.Command{
		Use:   "create <item-id>",
		Short: "Add a flashcard to an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := entities.NewFlashcard{ItemID: args[0]}
			in.Front, _ = cmd.Flags().GetString("front")
			in.Back, _ = cmd.Flags().GetString("back")

			card, err := a.client.CreateFlashcard(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), card, func(w io.Writer) {
				fmt.Fprintf(w, "Created flashcard %s\n", card.ID)
			})
		},
	}
	create.Flags().String("front", "", "question side")
	create.Flags().String("back", "", "answer side")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a flashcard or record a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			patch := entities.FlashcardPatch{
				Front: changedString(fs, "front"),
				Back:  changedString(fs, "back"),
			}
			if fs.Changed("mastered") {
				m, _ := fs.GetBool("mastered")
				patch.Mastered = &m
			}
			card, err := a.client.UpdateFlashcard(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), card, func(w io.Writer) {
				fmt.Fprintf(w, "Updated flashcard %s (mastered: %s)\n", card.ID, yesNo(card.Mastered))
			})
		},
	}
	update.Flags().String("front", "", "question side")
	update.Flags().String("back", "", "answer side")
	update.Flags().Bool("mastered", false, "mark as mastered (--mastered=false to reset)")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a flashcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteFlashcard(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted flashcard %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, create, update, del)
	return cmd
}

func unmastered(cards []entities.Flashcard) []entities.Flashcard {
	out := []entities.Flashcard{}
	for _, c := range cards {
		if !c.Mastered {
			out = append(out, c)
		}
	}
	return out
}

func printCards(w io.Writer, cards []entities.Flashcard) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No flashcards")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tFRONT\tMASTERED")
	for _, c := range cards {
		item := c.ItemID
		if c.Item != nil {
			item = c.Item.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, item, c.Front, yesNo(c.Mastered))
	}
	tw.Flush()
}
