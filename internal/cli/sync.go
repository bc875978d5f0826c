package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pharmastudy/internal/seed"
)

func (a *app) syncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Move on-device data to the API",
	}

	push := &cobra.Command{
		Use:   "push",
		Short: "Upload chapters created offline, then remove the local copies",
		Long: `push re-creates every on-device chapter on the API together with its
topics, items, images and flashcards. Each chapter is removed from the
device once it has been fully copied, so an interrupted push can be re-run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.client.PushLocal(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), result, func(w io.Writer) {
				fmt.Fprintf(w, "Pushed %d chapters, %d topics, %d items, %d flashcards, %d images\n",
					result.Chapters, result.Topics, result.Items, result.Flashcards, result.Images)
			})
		},
	}

	cmd.AddCommand(push)
	return cmd
}

func (a *app) seedCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the sample chapters and topics",
		Long: `seed creates the built-in chapters (molecules, enzymes, medications) and
their topics for the signed-in user. Accounts that already have chapters
are skipped unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			chapters, err := seed.Sample()
			if err != nil {
				return err
			}
			result, err := seed.Apply(cmd.Context(), a.client, chapters, force)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), result, func(w io.Writer) {
				if result.Skipped {
					fmt.Fprintln(w, "Chapters already exist, nothing seeded (use --force to add anyway)")
					return
				}
				fmt.Fprintf(w, "Seeded %d chapters and %d topics\n", result.Chapters, result.Topics)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "seed even when chapters exist")
	return cmd
}
