package client

import (
	"bytes"
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

// localProperties positions the inputs and gives each property its own id.
func localProperties(itemID string, in []entities.PropertyInput) []entities.Property {
	props := entities.BuildProperties(itemID, in)
	for i := range props {
		props[i].ID = entities.NewLocalID("property")
	}
	return props
}

func (l *Local) CreateItem(ctx context.Context, topicID string, in entities.NewItem) (*entities.Item, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, st, done, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	ci, ti, ok := findTopic(st, user.ID, topicID)
	if !ok {
		return nil, apperr.NotFound("Topic")
	}

	now := l.now()
	item := entities.Item{
		ID:             entities.NewLocalID("item"),
		TopicID:        topicID,
		ChapterID:      st.chapters[ci].ID,
		Name:           in.Name,
		ScientificName: in.ScientificName,
		Type:           in.Type,
		Description:    in.Description,
		ImageURL:       in.ImageURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	item.Properties = localProperties(item.ID, in.Properties)
	st.chapters[ci].Topics[ti].Items = append(st.chapters[ci].Topics[ti].Items, item)

	if in.HasFlashcard() {
		st.cards = append(st.cards, entities.Flashcard{
			ID:        entities.NewLocalID("flashcard"),
			ItemID:    item.ID,
			Front:     in.FlashcardFront,
			Back:      in.FlashcardBack,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err := l.save(ctx, st); err != nil {
		return nil, err
	}

	st.joinItem(&item)
	return &item, nil
}

// UpdateItem applies the non-nil fields of patch. A non-nil property list
// replaces the stored properties wholesale.
func (l *Local) UpdateItem(ctx context.Context, id string, patch entities.ItemPatch) (*entities.Item, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	user, st, done, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	ci, ti, ii, ok := findItem(st, user.ID, id)
	if !ok {
		return nil, apperr.NotFound("Item")
	}
	item := &st.chapters[ci].Topics[ti].Items[ii]
	patch.Apply(item)
	if patch.Properties != nil {
		item.Properties = localProperties(item.ID, *patch.Properties)
	}
	item.UpdatedAt = l.now()
	if err := l.saveChapters(ctx, st); err != nil {
		return nil, err
	}

	updated := *item
	updated.ChapterID = st.chapters[ci].ID
	st.joinItem(&updated)
	return &updated, nil
}

// DeleteItem removes the item with its flashcard.
func (l *Local) DeleteItem(ctx context.Context, id string) error {
	user, st, done, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	ci, ti, ii, ok := findItem(st, user.ID, id)
	if !ok {
		return apperr.NotFound("Item")
	}
	topic := &st.chapters[ci].Topics[ti]
	topic.Items = slices.Delete(topic.Items, ii, ii+1)
	dropCards(st, map[string]bool{id: true})
	return l.save(ctx, st)
}

// UploadImage validates the image like the server does and returns it
// inline as a data URI.
func (l *Local) UploadImage(ctx context.Context, filename string, data []byte) (*entities.UploadResult, error) {
	result, err := l.uploader.Upload(ctx, filename, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	result.PublicID = entities.NewLocalID("image")
	return &result, nil
}

// itemContext returns copies of the item's topic and chapter without their
// children, the shape the server attaches to flashcards and search hits.
func itemContext(c entities.Chapter, t entities.Topic) *entities.Topic {
	c.Topics = nil
	t.Items = nil
	t.Chapter = &c
	return &t
}

// ListFlashcards returns the user's flashcards with item, topic and chapter
// attached, oldest first.
func (l *Local) ListFlashcards(ctx context.Context) ([]entities.Flashcard, error) {
	user, st, done, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	cards := []entities.Flashcard{}
	for _, card := range st.cards {
		ci, ti, ii, ok := findItem(st, user.ID, card.ItemID)
		if !ok {
			continue
		}
		item := st.chapters[ci].Topics[ti].Items[ii]
		item.ChapterID = st.chapters[ci].ID
		item.Topic = itemContext(st.chapters[ci], st.chapters[ci].Topics[ti])
		item.Hydrate()
		card.Item = &item
		cards = append(cards, card)
	}
	slices.SortStableFunc(cards, func(a, b entities.Flashcard) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return cards, nil
}

// CreateFlashcard attaches a flashcard to an owned item. An item holds at
// most one flashcard.
func (l *Local) CreateFlashcard(ctx context.Context, in entities.NewFlashcard) (*entities.Flashcard, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, st, done, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	if _, _, _, ok := findItem(st, user.ID, in.ItemID); !ok {
		return nil, apperr.NotFound("Item")
	}
	if st.cardFor(in.ItemID) != nil {
		return nil, apperr.Conflict("Flashcard already exists for this item")
	}

	now := l.now()
	card := entities.Flashcard{
		ID:        entities.NewLocalID("flashcard"),
		ItemID:    in.ItemID,
		Front:     in.Front,
		Back:      in.Back,
		CreatedAt: now,
		UpdatedAt: now,
	}
	st.cards = append(st.cards, card)
	if err := l.saveCards(ctx, st); err != nil {
		return nil, err
	}
	return &card, nil
}

func (l *Local) ownedCard(st *state, userID, id string) int {
	return slices.IndexFunc(st.cards, func(f entities.Flashcard) bool {
		if f.ID != id {
			return false
		}
		_, _, _, ok := findItem(st, userID, f.ItemID)
		return ok
	})
}

// UpdateFlashcard edits the sides and review state. Any change to mastered
// stamps lastReviewed.
func (l *Local) UpdateFlashcard(ctx context.Context, id string, patch entities.FlashcardPatch) (*entities.Flashcard, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	user, st, done, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	i := l.ownedCard(st, user.ID, id)
	if i < 0 {
		return nil, apperr.NotFound("Flashcard")
	}
	card := &st.cards[i]
	now := l.now()
	if patch.Front != nil {
		card.Front = *patch.Front
	}
	if patch.Back != nil {
		card.Back = *patch.Back
	}
	if patch.Mastered != nil {
		card.Mastered = *patch.Mastered
		card.LastReviewed = &now
	}
	card.UpdatedAt = now
	if err := l.saveCards(ctx, st); err != nil {
		return nil, err
	}

	updated := *card
	return &updated, nil
}

func (l *Local) DeleteFlashcard(ctx context.Context, id string) error {
	user, st, done, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	i := l.ownedCard(st, user.ID, id)
	if i < 0 {
		return apperr.NotFound("Flashcard")
	}
	st.cards = slices.Delete(st.cards, i, i+1)
	return l.saveCards(ctx, st)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

func itemMatches(item entities.Item, q string) bool {
	if containsFold(item.Name, q) || containsFold(item.Description, q) {
		return true
	}
	if item.ScientificName != nil && containsFold(*item.ScientificName, q) {
		return true
	}
	for _, p := range item.Properties {
		if containsFold(p.Key, q) || containsFold(p.Value, q) {
			return true
		}
	}
	return false
}

// Search mirrors the server: a case-insensitive substring match over items
// (name, scientific name, description, property keys and values), chapters
// and topics (name, description), each list capped.
func (l *Local) Search(ctx context.Context, query, typ string) (entities.SearchResults, error) {
	results := entities.EmptySearchResults()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return results, nil
	}

	var itemType entities.ItemType
	if typ != "" {
		var ok bool
		if itemType, ok = entities.ParseItemType(typ); !ok {
			return results, apperr.Validation("unknown item type %q", typ)
		}
	}

	user, st, done, err := l.begin(ctx)
	if err != nil {
		return results, err
	}
	defer done()

	for _, c := range st.chapters {
		if c.UserID != user.ID {
			continue
		}
		if containsFold(c.Name, q) || containsFold(c.Description, q) {
			match := c
			match.Topics = nil
			results.Chapters = append(results.Chapters, match)
		}
		for _, t := range c.Topics {
			if containsFold(t.Name, q) || containsFold(t.Description, q) {
				results.Topics = append(results.Topics, *itemContext(c, t))
			}
			for _, item := range t.Items {
				if itemType != "" && item.Type != itemType {
					continue
				}
				if !itemMatches(item, q) {
					continue
				}
				item.ChapterID = c.ID
				item.Topic = itemContext(c, t)
				st.joinItem(&item)
				results.Items = append(results.Items, item)
			}
		}
	}

	slices.SortStableFunc(results.Items, func(a, b entities.Item) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortStableFunc(results.Chapters, chapterOrder)
	slices.SortStableFunc(results.Topics, topicOrder)

	results.Items = results.Items[:min(len(results.Items), entities.SearchItemLimit)]
	results.Chapters = results.Chapters[:min(len(results.Chapters), entities.SearchChapterLimit)]
	results.Topics = results.Topics[:min(len(results.Topics), entities.SearchTopicLimit)]
	return results, nil
}
