package entities

import (
	"strings"

	"github.com/mrlokans/pharmastudy/internal/apperr"
)

// Patch types carry optional fields: nil leaves the stored value untouched.

type ChapterPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

// Normalize rewrites a valid color into "#rrggbb" form. An empty color
// clears the stored one.
func (p *ChapterPatch) Normalize() {
	p.Color = normalizeColor(p.Color)
}

func (p ChapterPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperr.Validation("name cannot be empty")
	}
	if err := validateOrder(p.Order); err != nil {
		return err
	}
	return validateColor(p.Color)
}

func (p ChapterPatch) Apply(c *Chapter) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Color != nil {
		c.Color = p.Color
		if *p.Color == "" {
			c.Color = nil
		}
	}
	if p.Order != nil {
		c.Order = *p.Order
	}
}

// Updates returns the column map for a gorm Updates call.
func (p ChapterPatch) Updates() map[string]any {
	m := map[string]any{}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Color != nil {
		m["color"] = colorColumn(*p.Color)
	}
	if p.Order != nil {
		m["sort_order"] = *p.Order
	}
	return m
}

// colorColumn stores a cleared color as NULL.
func colorColumn(color string) any {
	if color == "" {
		return nil
	}
	return color
}

func validateOrder(order *int) error {
	if order != nil && *order < 1 {
		return apperr.Validation("order must be a positive integer")
	}
	return nil
}

type TopicPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

func (p TopicPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperr.Validation("name cannot be empty")
	}
	return validateOrder(p.Order)
}

func (p TopicPatch) Apply(t *Topic) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
}

func (p TopicPatch) Updates() map[string]any {
	m := map[string]any{}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Order != nil {
		m["sort_order"] = *p.Order
	}
	return m
}

// ItemPatch replaces the whole property list when Properties is non-nil,
// including with an empty list.
type ItemPatch struct {
	Name           *string          `json:"name,omitempty"`
	ScientificName *string          `json:"scientificName,omitempty"`
	Type           *ItemType        `json:"type,omitempty"`
	Description    *string          `json:"description,omitempty"`
	ImageURL       *string          `json:"imageUrl,omitempty"`
	Properties     *[]PropertyInput `json:"properties,omitempty"`
}

func (p *ItemPatch) Normalize() {
	if p.Type != nil {
		t := ItemType(strings.ToLower(strings.TrimSpace(string(*p.Type))))
		p.Type = &t
	}
}

func (p ItemPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperr.Validation("name cannot be empty")
	}
	if p.Type != nil && !p.Type.Valid() {
		return apperr.Validation("type must be one of molecule, enzyme, medication")
	}
	if p.Properties != nil {
		return validateProperties(*p.Properties)
	}
	return nil
}

func (p ItemPatch) Apply(i *Item) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.ScientificName != nil {
		i.ScientificName = p.ScientificName
	}
	if p.Type != nil {
		i.Type = *p.Type
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.ImageURL != nil {
		i.ImageURL = p.ImageURL
	}
	if p.Properties != nil {
		i.Properties = BuildProperties(i.ID, *p.Properties)
	}
}

func (p ItemPatch) Updates() map[string]any {
	m := map[string]any{}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.ScientificName != nil {
		m["scientific_name"] = *p.ScientificName
	}
	if p.Type != nil {
		m["type"] = string(*p.Type)
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.ImageURL != nil {
		m["image_url"] = *p.ImageURL
	}
	return m
}

// FlashcardPatch also records review state; setting Mastered stamps
// LastReviewed.
type FlashcardPatch struct {
	Front    *string `json:"front,omitempty"`
	Back     *string `json:"back,omitempty"`
	Mastered *bool   `json:"mastered,omitempty"`
}

func (p FlashcardPatch) Validate() error {
	if p.Front != nil && strings.TrimSpace(*p.Front) == "" {
		return apperr.Validation("front cannot be empty")
	}
	if p.Back != nil && strings.TrimSpace(*p.Back) == "" {
		return apperr.Validation("back cannot be empty")
	}
	return nil
}
