package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemType string

const (
	ItemTypeMolecule   ItemType = "molecule"
	ItemTypeEnzyme     ItemType = "enzyme"
	ItemTypeMedication ItemType = "medication"
)

// ParseItemType lower-cases s and reports whether it names a known item type.
func ParseItemType(s string) (ItemType, bool) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeMolecule, ItemTypeEnzyme, ItemTypeMedication:
		return true
	}
	return false
}

// LocalIDPrefix marks records created on-device, which never collide with
// server-assigned UUIDs.
const LocalIDPrefix = "local-"

func NewLocalID(kind string) string {
	return LocalIDPrefix + kind + "-" + uuid.NewString()
}

func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

type Chapter struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	UserID      string    `gorm:"index;size:64;not null" json:"userId"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Order       int       `gorm:"column:sort_order;index" json:"order"`
	Color       *string   `gorm:"size:16" json:"color,omitempty"`
	Topics      []Topic   `gorm:"foreignKey:ChapterID" json:"topics"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c *Chapter) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

type Topic struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	ChapterID   string    `gorm:"index;size:64;not null" json:"chapterId"`
	Chapter     *Chapter  `gorm:"foreignKey:ChapterID" json:"chapter,omitempty"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Order       int       `gorm:"column:sort_order;index" json:"order"`
	Items       []Item    `gorm:"foreignKey:TopicID" json:"items"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	newID(&t.ID)
	return nil
}

type Item struct {
	ID             string     `gorm:"primaryKey;size:64" json:"id"`
	TopicID        string     `gorm:"index;size:64;not null" json:"topicId"`
	Topic          *Topic     `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	ChapterID      string     `gorm:"-" json:"chapterId"` // filled on read from the owning topic
	Name           string     `gorm:"size:255;not null" json:"name"`
	ScientificName *string    `gorm:"size:255" json:"scientificName,omitempty"`
	Type           ItemType   `gorm:"size:20;not null" json:"type"`
	Description    string     `gorm:"type:text" json:"description"`
	ImageURL       *string    `gorm:"size:2048" json:"imageUrl,omitempty"`
	Properties     []Property `gorm:"foreignKey:ItemID" json:"properties"`
	Flashcard      *Flashcard `gorm:"foreignKey:ItemID" json:"flashcard,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	newID(&i.ID)
	return nil
}

// Property is an ordered key/value pair owned by an item. Position keeps
// the order the caller supplied.
type Property struct {
	ID       string `gorm:"primaryKey;size:64" json:"id"`
	ItemID   string `gorm:"index;size:64;not null" json:"itemId"`
	Key      string `gorm:"size:255;not null" json:"key"`
	Value    string `gorm:"type:text" json:"value"`
	Position int    `json:"-"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}

// Flashcard is at most one per item.
type Flashcard struct {
	ID           string     `gorm:"primaryKey;size:64" json:"id"`
	ItemID       string     `gorm:"uniqueIndex;size:64;not null" json:"itemId"`
	Item         *Item      `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Front        string     `gorm:"type:text;not null" json:"front"`
	Back         string     `gorm:"type:text;not null" json:"back"`
	Mastered     bool       `gorm:"default:false" json:"mastered"`
	LastReviewed *time.Time `json:"lastReviewed,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (f *Flashcard) BeforeCreate(tx *gorm.DB) error {
	newID(&f.ID)
	return nil
}
