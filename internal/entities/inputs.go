package entities

import (
	"strings"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/utils"
)

// Create payloads. The JSON names match the REST API bodies so the same
// structs are bound by the server and sent by the client.

type NewChapter struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Color       *string `json:"color,omitempty"`
}

// Normalize rewrites a valid color into "#rrggbb" form and drops an empty one.
func (n *NewChapter) Normalize() {
	n.Color = normalizeColor(n.Color)
	if n.Color != nil && *n.Color == "" {
		n.Color = nil
	}
}

func (n NewChapter) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return apperr.Validation("name is required")
	}
	return validateColor(n.Color)
}

type NewTopic struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (n NewTopic) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return apperr.Validation("name is required")
	}
	return nil
}

type PropertyInput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type NewItem struct {
	Name           string          `json:"name"`
	ScientificName *string         `json:"scientificName,omitempty"`
	Type           ItemType        `json:"type"`
	Description    string          `json:"description"`
	ImageURL       *string         `json:"imageUrl,omitempty"`
	Properties     []PropertyInput `json:"properties"`
	FlashcardFront string          `json:"flashcardFront,omitempty"`
	FlashcardBack  string          `json:"flashcardBack,omitempty"`
}

// Normalize lower-cases the type so "Molecule" and "molecule" are the same.
func (n *NewItem) Normalize() {
	n.Type = ItemType(strings.ToLower(strings.TrimSpace(string(n.Type))))
}

func (n NewItem) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return apperr.Validation("name is required")
	}
	if !n.Type.Valid() {
		return apperr.Validation("type must be one of molecule, enzyme, medication")
	}
	return validateProperties(n.Properties)
}

// HasFlashcard reports whether both sides were supplied. A single side is
// ignored, matching how items are created without a card.
func (n NewItem) HasFlashcard() bool {
	return strings.TrimSpace(n.FlashcardFront) != "" && strings.TrimSpace(n.FlashcardBack) != ""
}

type NewFlashcard struct {
	ItemID string `json:"itemId"`
	Front  string `json:"front"`
	Back   string `json:"back"`
}

func (n NewFlashcard) Validate() error {
	switch {
	case n.ItemID == "":
		return apperr.Validation("itemId is required")
	case strings.TrimSpace(n.Front) == "" || strings.TrimSpace(n.Back) == "":
		return apperr.Validation("front and back are required")
	}
	return nil
}

func validateProperties(props []PropertyInput) error {
	for _, p := range props {
		if strings.TrimSpace(p.Key) == "" {
			return apperr.Validation("property key is required")
		}
	}
	return nil
}

// BuildProperties converts inputs into positioned properties for itemID.
func BuildProperties(itemID string, props []PropertyInput) []Property {
	out := make([]Property, 0, len(props))
	for i, p := range props {
		out = append(out, Property{ItemID: itemID, Key: p.Key, Value: p.Value, Position: i})
	}
	return out
}

func normalizeColor(color *string) *string {
	if color == nil || *color == "" {
		return color
	}
	if c, err := utils.NormalizeHexColor(*color); err == nil {
		return &c
	}
	return color
}

func validateColor(color *string) error {
	if color == nil || *color == "" {
		return nil
	}
	if _, err := utils.NormalizeHexColor(*color); err != nil {
		return apperr.Validation("color must be a hex color such as #3b82f6")
	}
	return nil
}
