// Package draft fills in a starting point for a new study item from its name
// and type: a description, a few typed properties and a flashcard. The text
// is templated, not researched; it is meant to be edited.
package draft

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

type templates struct {
	descriptions []string
	fronts       []string
	backs        []string
	properties   func(pick func(n int) int) []entities.PropertyInput
}

// %[1]s in every template is the item name.
var byType = map[entities.ItemType]templates{
	entities.ItemTypeMolecule: {
		descriptions: []string{
			"%[1]s is an organic compound with notable pharmacological activity, acting on specific biological targets.",
			"%[1]s is a small-molecule drug that modulates cellular processes through a defined mechanism.",
			"%[1]s binds selectively to its target receptors.",
		},
		fronts: []string{
			"What is the primary mechanism of action of %[1]s?",
			"What are the therapeutic uses of %[1]s?",
			"What are the key pharmacokinetic properties of %[1]s?",
		},
		backs: []string{
			"%[1]s binds specific receptors and modulates their activity, producing its therapeutic effect.",
			"%[1]s is selective for its target tissues and has favourable pharmacokinetics.",
			"%[1]s has good bioavailability and a distribution suited to its uses.",
		},
		properties: func(func(int) int) []entities.PropertyInput {
			return []entities.PropertyInput{
				{Key: "Mechanism", Value: "Receptor modulation"},
				{Key: "Therapeutic Class", Value: "Pharmaceutical agent"},
				{Key: "Bioavailability", Value: "Moderate to high"},
			}
		},
	},
	entities.ItemTypeEnzyme: {
		descriptions: []string{
			"%[1]s is an enzyme in a metabolic pathway, catalysing a reaction essential to cellular function.",
			"%[1]s plays a central role in drug metabolism and pharmacokinetics.",
			"%[1]s is a well-characterised enzyme with known kinetics and inhibitors.",
		},
		fronts: []string{
			"What reaction does %[1]s catalyse?",
			"What role does %[1]s play in drug metabolism?",
			"What are the known inhibitors of %[1]s?",
		},
		backs: []string{
			"%[1]s catalyses a key step in its pathway, with defined substrate specificity.",
			"%[1]s biotransforms many drugs, which makes it a common source of interactions.",
			"%[1]s is inhibited by several compounds, both reversibly and irreversibly.",
		},
		properties: func(pick func(int) int) []entities.PropertyInput {
			return []entities.PropertyInput{
				{Key: "EC Number", Value: fmt.Sprintf("EC %d.%d.%d.%d", pick(9)+1, pick(9)+1, pick(9)+1, pick(9)+1)},
				{Key: "Cofactor", Value: "Mg²⁺ or Zn²⁺"},
				{Key: "Optimal pH", Value: fmt.Sprintf("%d.%d", 5+pick(3), pick(10))},
			}
		},
	},
	entities.ItemTypeMedication: {
		descriptions: []string{
			"%[1]s is a widely used therapeutic agent with established clinical efficacy.",
			"%[1]s is prescribed for its specific pharmacological effects.",
			"%[1]s belongs to an important drug class with a well-documented safety profile.",
		},
		fronts: []string{
			"What are the primary indications for %[1]s?",
			"What is the mechanism of action of %[1]s?",
			"What are the common side effects of %[1]s?",
		},
		backs: []string{
			"%[1]s is indicated where its pharmacological effect gives a therapeutic benefit.",
			"%[1]s interacts selectively with its biological targets to produce the clinical effect.",
			"Side effects of %[1]s are usually mild and follow from its action on non-target tissues.",
		},
		properties: func(pick func(int) int) []entities.PropertyInput {
			return []entities.PropertyInput{
				{Key: "Indication", Value: "Therapeutic use"},
				{Key: "Route", Value: "Oral / IV"},
				{Key: "Half-life", Value: fmt.Sprintf("%d hours", pick(20)+2)},
			}
		},
	},
}

// Generate drafts an item called name of type typ. A nil rng uses the
// process-wide source. An unknown type falls back to molecule.
func Generate(name string, typ entities.ItemType, rng *rand.Rand) entities.NewItem {
	pick := rand.IntN
	if rng != nil {
		pick = rng.IntN
	}
	name = strings.TrimSpace(name)
	typ, ok := entities.ParseItemType(string(typ))
	if !ok {
		typ = entities.ItemTypeMolecule
	}
	t := byType[typ]

	choose := func(options []string) string {
		return fmt.Sprintf(options[pick(len(options))], name)
	}

	props := []entities.PropertyInput{
		{Key: "Name", Value: name},
		{Key: "Type", Value: strings.ToUpper(string(typ[:1])) + string(typ[1:])},
	}
	return entities.NewItem{
		Name:           name,
		Type:           typ,
		Description:    choose(t.descriptions),
		Properties:     append(props, t.properties(pick)...),
		FlashcardFront: choose(t.fronts),
		FlashcardBack:  choose(t.backs),
	}
}

// Fill copies drafted fields into in wherever in leaves them empty. The
// type is left alone so an invalid one still fails validation.
func Fill(in *entities.NewItem, rng *rand.Rand) {
	d := Generate(in.Name, in.Type, rng)
	if in.Description == "" {
		in.Description = d.Description
	}
	if len(in.Properties) == 0 {
		in.Properties = d.Properties
	}
	if in.FlashcardFront == "" && in.FlashcardBack == "" {
		in.FlashcardFront = d.FlashcardFront
		in.FlashcardBack = d.FlashcardBack
	}
}
