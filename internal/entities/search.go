package entities

// SearchResults is the response of a search. Every list is non-nil so it
// serializes as [] rather than null.
type SearchResults struct {
	Items    []Item    `json:"items"`
	Chapters []Chapter `json:"chapters"`
	Topics   []Topic   `json:"topics"`
}

func EmptySearchResults() SearchResults {
	return SearchResults{Items: []Item{}, Chapters: []Chapter{}, Topics: []Topic{}}
}

// Result caps per category.
const (
	SearchItemLimit    = 50
	SearchChapterLimit = 10
	SearchTopicLimit   = 10
)

type UploadResult struct {
	ImageURL string `json:"imageUrl"`
	PublicID string `json:"publicId"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
