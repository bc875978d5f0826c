package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mrlokans/pharmastudy/internal/draft"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

// changedString returns a pointer to the flag value when the flag was set.
func changedString(fs *pflag.FlagSet, name string) *string {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetString(name)
	return &v
}

func changedInt(fs *pflag.FlagSet, name string) *int {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetInt(name)
	return &v
}

func (a *app) chaptersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chapters",
		Aliases: []string{"chapter"},
		Short:   "Manage chapters",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show chapters with their topics and items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			chapters, err := a.client.ListChapters(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), chapters, func(w io.Writer) {
				printTree(w, chapters)
			})
		},
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a chapter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := entities.NewChapter{Name: args[0]}
			in.Description, _ = cmd.Flags().GetString("description")
			in.Color = changedString(cmd.Flags(), "color")

			chapter, err := a.client.CreateChapter(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), chapter, func(w io.Writer) {
				fmt.Fprintf(w, "Created chapter %s (%s)\n", chapter.Name, chapter.ID)
			})
		},
	}
	create.Flags().String("description", "", "chapter description")
	create.Flags().String("color", "", "hex color such as #3b82f6")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change chapter fields; unset flags are left alone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			patch := entities.ChapterPatch{
				Name:        changedString(fs, "name"),
				Description: changedString(fs, "description"),
				Color:       changedString(fs, "color"),
				Order:       changedInt(fs, "order"),
			}
			chapter, err := a.client.UpdateChapter(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), chapter, func(w io.Writer) {
				fmt.Fprintf(w, "Updated chapter %s (%s)\n", chapter.Name, chapter.ID)
			})
		},
	}
	update.Flags().String("name", "", "chapter name")
	update.Flags().String("description", "", "chapter description")
	update.Flags().String("color", "", "hex color, empty to clear")
	update.Flags().Int("order", 0, "display position")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a chapter with its topics, items and flashcards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteChapter(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted chapter %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, create, update, del)
	return cmd
}

func printTree(w io.Writer, chapters []entities.Chapter) {
	if len(chapters) == 0 {
		fmt.Fprintln(w, "No chapters yet")
		return
	}
	for _, c := range chapters {
		fmt.Fprintf(w, "%s  %s\n", c.ID, c.Name)
		for _, t := range c.Topics {
			fmt.Fprintf(w, "  %s  %s\n", t.ID, t.Name)
			for _, i := range t.Items {
				card := ""
				if i.Flashcard != nil {
					card = " [card]"
				}
				fmt.Fprintf(w, "    %s  %s (%s)%s\n", i.ID, i.Name, i.Type, card)
			}
		}
	}
}

func (a *app) topicsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "topics",
		Aliases: []string{"topic"},
		Short:   "Manage topics inside a chapter",
	}

	create := &cobra.Command{
		Use:   "create <chapter-id> <name>",
		Short: "Create a topic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := entities.NewTopic{Name: args[1]}
			in.Description, _ = cmd.Flags().GetString("description")

			topic, err := a.client.CreateTopic(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), topic, func(w io.Writer) {
				fmt.Fprintf(w, "Created topic %s (%s)\n", topic.Name, topic.ID)
			})
		},
	}
	create.Flags().String("description", "", "topic description")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change topic fields; unset flags are left alone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			patch := entities.TopicPatch{
				Name:        changedString(fs, "name"),
				Description: changedString(fs, "description"),
				Order:       changedInt(fs, "order"),
			}
			topic, err := a.client.UpdateTopic(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), topic, func(w io.Writer) {
				fmt.Fprintf(w, "Updated topic %s (%s)\n", topic.Name, topic.ID)
			})
		},
	}
	update.Flags().String("name", "", "topic name")
	update.Flags().String("description", "", "topic description")
	update.Flags().Int("order", 0, "display position")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a topic with its items and flashcards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteTopic(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted topic %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(create, update, del)
	return cmd
}

// parseProps turns repeated key=value flags into property inputs, keeping
// their order.
func parseProps(raw []string) ([]entities.PropertyInput, error) {
	props := make([]entities.PropertyInput, 0, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("property %q must be key=value", kv)
		}
		props = append(props, entities.PropertyInput{Key: strings.TrimSpace(key), Value: value})
	}
	return props, nil
}

func (a *app) itemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Manage molecules, enzymes and medications",
	}

	create := &cobra.Command{
		Use:   "create <topic-id> <name>",
		Short: "Create an item, optionally with a flashcard",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			rawProps, _ := fs.GetStringArray("prop")
			props, err := parseProps(rawProps)
			if err != nil {
				return err
			}
			typ, _ := fs.GetString("type")
			in := entities.NewItem{
				Name:           args[1],
				Type:           entities.ItemType(typ),
				ScientificName: changedString(fs, "scientific-name"),
				ImageURL:       changedString(fs, "image-url"),
				Properties:     props,
			}
			in.Description, _ = fs.GetString("description")
			in.FlashcardFront, _ = fs.GetString("front")
			in.FlashcardBack, _ = fs.GetString("back")
			if generate, _ := fs.GetBool("generate"); generate {
				draft.Fill(&in, nil)
			}

			item, err := a.client.CreateItem(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), item, func(w io.Writer) {
				fmt.Fprintf(w, "Created %s %s (%s)\n", item.Type, item.Name, item.ID)
			})
		},
	}
	create.Flags().String("type", string(entities.ItemTypeMolecule), "molecule, enzyme or medication")
	create.Flags().String("description", "", "item description")
	create.Flags().String("scientific-name", "", "scientific name")
	create.Flags().String("image-url", "", "image URL, for example from upload")
	create.Flags().StringArray("prop", nil, "property as key=value (repeatable)")
	create.Flags().String("front", "", "flashcard front")
	create.Flags().String("back", "", "flashcard back")
	create.Flags().Bool("generate", false, "draft the description, properties and flashcard where not given")

	draftCmd := &cobra.Command{
		Use:   "draft <name>",
		Short: "Print a templated item draft without saving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, _ := cmd.Flags().GetString("type")
			d := draft.Generate(args[0], entities.ItemType(typ), nil)
			return a.emit(cmd.OutOrStdout(), d, func(w io.Writer) {
				printDraft(w, d)
			})
		},
	}
	draftCmd.Flags().String("type", string(entities.ItemTypeMolecule), "molecule, enzyme or medication")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change item fields; --prop replaces the whole property list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			patch := entities.ItemPatch{
				Name:           changedString(fs, "name"),
				ScientificName: changedString(fs, "scientific-name"),
				Description:    changedString(fs, "description"),
				ImageURL:       changedString(fs, "image-url"),
			}
			if typ := changedString(fs, "type"); typ != nil {
				t := entities.ItemType(*typ)
				patch.Type = &t
			}
			clearProps, _ := fs.GetBool("clear-props")
			if fs.Changed("prop") || clearProps {
				rawProps, _ := fs.GetStringArray("prop")
				props, err := parseProps(rawProps)
				if err != nil {
					return err
				}
				patch.Properties = &props
			}

			item, err := a.client.UpdateItem(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), item, func(w io.Writer) {
				printItem(w, item)
			})
		},
	}
	update.Flags().String("name", "", "item name")
	update.Flags().String("type", "", "molecule, enzyme or medication")
	update.Flags().String("description", "", "item description")
	update.Flags().String("scientific-name", "", "scientific name")
	update.Flags().String("image-url", "", "image URL")
	update.Flags().StringArray("prop", nil, "property as key=value (repeatable)")
	update.Flags().Bool("clear-props", false, "remove all properties")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item and its flashcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(create, draftCmd, update, del)
	return cmd
}

func printDraft(w io.Writer, d entities.NewItem) {
	fmt.Fprintf(w, "%s (%s)\n  %s\n", d.Name, d.Type, d.Description)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range d.Properties {
		fmt.Fprintf(tw, "  %s\t%s\n", p.Key, p.Value)
	}
	tw.Flush()
	fmt.Fprintf(w, "  Q: %s\n  A: %s\n", d.FlashcardFront, d.FlashcardBack)
}

func printItem(w io.Writer, item *entities.Item) {
	fmt.Fprintf(w, "%s (%s) %s\n", item.Name, item.Type, item.ID)
	if item.ScientificName != nil && *item.ScientificName != "" {
		fmt.Fprintf(w, "  scientific name: %s\n", *item.ScientificName)
	}
	if item.Description != "" {
		fmt.Fprintf(w, "  %s\n", item.Description)
	}
	if len(item.Properties) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, p := range item.Properties {
			fmt.Fprintf(tw, "  %s\t%s\n", p.Key, p.Value)
		}
		tw.Flush()
	}
}

func (a *app) uploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an item image and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			result, err := a.client.UploadImage(cmd.Context(), filepath.Base(args[0]), data)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), result, func(w io.Writer) {
				fmt.Fprintln(w, result.ImageURL)
			})
		},
	}
}
