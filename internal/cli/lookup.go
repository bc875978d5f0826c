package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/lookup"
)

func (a *app) lookupCommand() *cobra.Command {
	var apply string

	cmd := &cobra.Command{
		Use:   "lookup <compound>",
		Short: "Look up a compound on PubChem",
		Long: `lookup fetches formula, molar mass, IUPAC name and synonyms for a compound.
With --apply, the result is merged into an existing item: compound
properties replace ones with the same key, and the structure image is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := lookup.NewClient(a.cfg.LookupBaseURL)
			defer source.Close()
			svc := lookup.NewService(source, nil, a.log)

			compound, err := svc.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if compound == nil {
				return apperr.NotFound("Compound")
			}

			if apply != "" {
				item, err := a.applyCompound(cmd, apply, compound)
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), item, func(w io.Writer) {
					printItem(w, item)
				})
			}

			return a.emit(cmd.OutOrStdout(), compound, func(w io.Writer) {
				fmt.Fprintf(w, "%s (CID %d)\n", compound.Name, compound.CID)
				for _, p := range compound.ToProperties() {
					fmt.Fprintf(w, "  %s: %s\n", p.Key, p.Value)
				}
				fmt.Fprintf(w, "  Image: %s\n", compound.ImageURL)
			})
		},
	}
	cmd.Flags().StringVar(&apply, "apply", "", "item id to fill from the compound")
	return cmd
}

func (a *app) applyCompound(cmd *cobra.Command, itemID string, c *lookup.Compound) (*entities.Item, error) {
	chapters, err := a.client.ListChapters(cmd.Context())
	if err != nil {
		return nil, err
	}
	item, _, _ := entities.FindItem(chapters, itemID)
	if item == nil {
		return nil, apperr.NotFound("Item")
	}

	props := mergeProperties(item.Properties, c.ToProperties())
	patch := entities.ItemPatch{Properties: &props}
	if c.IUPACName != "" && (item.ScientificName == nil || *item.ScientificName == "") {
		patch.ScientificName = &c.IUPACName
	}
	if item.ImageURL == nil || *item.ImageURL == "" {
		img := c.ImageURL
		patch.ImageURL = &img
	}
	return a.client.UpdateItem(cmd.Context(), itemID, patch)
}

// mergeProperties keeps existing order, overwriting values whose key the
// compound also provides and appending the rest.
func mergeProperties(existing []entities.Property, fetched []entities.PropertyInput) []entities.PropertyInput {
	index := make(map[string]int, len(existing))
	out := make([]entities.PropertyInput, 0, len(existing)+len(fetched))
	for _, p := range existing {
		index[p.Key] = len(out)
		out = append(out, entities.PropertyInput{Key: p.Key, Value: p.Value})
	}
	for _, p := range fetched {
		if i, ok := index[p.Key]; ok {
			out[i].Value = p.Value
			continue
		}
		index[p.Key] = len(out)
		out = append(out, p)
	}
	return out
}
