package entities

// Hydrate fills the denormalized item chapter ids and replaces nil slices
// with empty ones so both backends serialize the same tree shape.
func (c *Chapter) Hydrate() {
	if c.Topics == nil {
		c.Topics = []Topic{}
	}
	for i := range c.Topics {
		c.Topics[i].ChapterID = c.ID
		c.Topics[i].Hydrate(c.ID)
	}
}

func (t *Topic) Hydrate(chapterID string) {
	if t.Items == nil {
		t.Items = []Item{}
	}
	for i := range t.Items {
		t.Items[i].ChapterID = chapterID
		t.Items[i].Hydrate()
	}
}

func (i *Item) Hydrate() {
	if i.Properties == nil {
		i.Properties = []Property{}
	}
	if i.ChapterID == "" && i.Topic != nil {
		i.ChapterID = i.Topic.ChapterID
	}
}

// FindItem walks the tree for an item, returning it with its topic and chapter.
func FindItem(chapters []Chapter, itemID string) (*Item, *Topic, *Chapter) {
	for ci := range chapters {
		for ti := range chapters[ci].Topics {
			for ii := range chapters[ci].Topics[ti].Items {
				if chapters[ci].Topics[ti].Items[ii].ID == itemID {
					return &chapters[ci].Topics[ti].Items[ii], &chapters[ci].Topics[ti], &chapters[ci]
				}
			}
		}
	}
	return nil, nil, nil
}

// FindTopic walks the tree for a topic.
func FindTopic(chapters []Chapter, topicID string) (*Topic, *Chapter) {
	for ci := range chapters {
		for ti := range chapters[ci].Topics {
			if chapters[ci].Topics[ti].ID == topicID {
				return &chapters[ci].Topics[ti], &chapters[ci]
			}
		}
	}
	return nil, nil
}

// AllItems flattens a chapter tree in chapter, topic, item order.
func AllItems(chapters []Chapter) []Item {
	var out []Item
	for _, c := range chapters {
		for _, t := range c.Topics {
			out = append(out, t.Items...)
		}
	}
	return out
}
