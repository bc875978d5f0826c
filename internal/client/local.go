package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/auth"
	"github.com/mrlokans/pharmastudy/internal/config"
	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/localstore"
	"github.com/mrlokans/pharmastudy/internal/media"
)

const localTokenPrefix = "local-token-"

var errNotSignedIn = apperr.Unauthorized("authentication required")

// localAccount is how accounts are kept on-device. entities.User never
// serializes its hash, so the account carries it separately.
type localAccount struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (a localAccount) user() entities.User {
	return entities.User{ID: a.ID, Name: a.Name, Email: a.Email, CreatedAt: a.CreatedAt}
}

// Local implements Backend on top of the on-device store. It follows the
// server's rules: chapters belong to the signed-in user, new chapters and
// topics are appended after the current last one, and deletes cascade down
// the tree.
type Local struct {
	mu         sync.Mutex
	store      localstore.Store
	uploader   *media.Uploader
	bcryptCost int
	now        func() time.Time
}

func NewLocal(store localstore.Store) *Local {
	return &Local{
		store:    store,
		uploader: media.NewUploader(media.DataURIStore{}, config.DefaultMaxUploadBytes),
		now:      time.Now,
	}
}

// state is the full on-device dataset. Items inside chapters never carry
// their flashcard; cards live under their own key and are joined on read.
type state struct {
	chapters []entities.Chapter
	cards    []entities.Flashcard
}

func (l *Local) load(ctx context.Context) (*state, error) {
	chapters, err := localstore.Load[[]entities.Chapter](ctx, l.store, localstore.KeyChapters)
	if err != nil {
		return nil, err
	}
	cards, err := localstore.Load[[]entities.Flashcard](ctx, l.store, localstore.KeyFlashcards)
	if err != nil {
		return nil, err
	}
	return &state{chapters: chapters, cards: cards}, nil
}

func (l *Local) saveChapters(ctx context.Context, st *state) error {
	for ci := range st.chapters {
		for ti := range st.chapters[ci].Topics {
			for ii := range st.chapters[ci].Topics[ti].Items {
				st.chapters[ci].Topics[ti].Items[ii].Flashcard = nil
			}
		}
	}
	return localstore.Save(ctx, l.store, localstore.KeyChapters, st.chapters)
}

func (l *Local) saveCards(ctx context.Context, st *state) error {
	return localstore.Save(ctx, l.store, localstore.KeyFlashcards, st.cards)
}

func (l *Local) save(ctx context.Context, st *state) error {
	if err := l.saveChapters(ctx, st); err != nil {
		return err
	}
	return l.saveCards(ctx, st)
}

func (l *Local) currentUser(ctx context.Context) (*entities.User, error) {
	user, err := localstore.Load[*entities.User](ctx, l.store, localstore.KeyUser)
	if err != nil {
		return nil, err
	}
	if user == nil || user.ID == "" {
		return nil, errNotSignedIn
	}
	return user, nil
}

// begin locks the store and loads the signed-in user with the dataset.
// The returned func releases the lock.
func (l *Local) begin(ctx context.Context) (*entities.User, *state, func(), error) {
	l.mu.Lock()
	user, err := l.currentUser(ctx)
	if err != nil {
		l.mu.Unlock()
		return nil, nil, nil, err
	}
	st, err := l.load(ctx)
	if err != nil {
		l.mu.Unlock()
		return nil, nil, nil, err
	}
	return user, st, l.mu.Unlock, nil
}

func forgetSession(ctx context.Context, store localstore.Store) error {
	if err := store.Delete(ctx, localstore.KeyToken); err != nil {
		return err
	}
	return store.Delete(ctx, localstore.KeyUser)
}

func (l *Local) signIn(ctx context.Context, account localAccount) (*entities.AuthResult, error) {
	result := &entities.AuthResult{User: account.user(), Token: localTokenPrefix + account.ID}
	if err := localstore.Save(ctx, l.store, localstore.KeyToken, result.Token); err != nil {
		return nil, err
	}
	if err := localstore.Save(ctx, l.store, localstore.KeyUser, result.User); err != nil {
		return nil, err
	}
	return result, nil
}

// Register creates an on-device account and signs it in. Passwords are
// kept as bcrypt hashes.
func (l *Local) Register(ctx context.Context, name, email, password string) (*entities.AuthResult, error) {
	if strings.TrimSpace(name) == "" || email == "" || password == "" {
		return nil, apperr.Validation("All fields are required")
	}
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	l.mu.Lock()
	defer l.mu.Unlock()

	accounts, err := localstore.Load[[]localAccount](ctx, l.store, localstore.KeyUsers)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Email == email {
			return nil, apperr.Conflict("User already exists with this email")
		}
	}

	hash, err := auth.HashPassword(password, l.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := localAccount{
		ID:           entities.NewLocalID("user"),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    l.now(),
	}
	accounts = append(accounts, account)
	if err := localstore.Save(ctx, l.store, localstore.KeyUsers, accounts); err != nil {
		return nil, err
	}
	return l.signIn(ctx, account)
}

func (l *Local) Login(ctx context.Context, email, password string) (*entities.AuthResult, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	l.mu.Lock()
	defer l.mu.Unlock()

	accounts, err := localstore.Load[[]localAccount](ctx, l.store, localstore.KeyUsers)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Email != email {
			continue
		}
		if err := auth.CheckPassword(password, a.PasswordHash); err != nil {
			if errors.Is(err, auth.ErrInvalidPassword) {
				return nil, auth.ErrInvalidCredentials
			}
			return nil, err
		}
		return l.signIn(ctx, a)
	}
	return nil, auth.ErrInvalidCredentials
}

// Logout clears the stored token and user snapshot.
func (l *Local) Logout(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return forgetSession(ctx, l.store)
}

func (l *Local) Me(ctx context.Context) (*entities.User, error) {
	return l.currentUser(ctx)
}

// CountUsers reports how many on-device accounts exist.
func (l *Local) CountUsers(ctx context.Context) (int, error) {
	accounts, err := localstore.Load[[]localAccount](ctx, l.store, localstore.KeyUsers)
	return len(accounts), err
}

// Accounts lists the on-device accounts in creation order.
func (l *Local) Accounts(ctx context.Context) ([]entities.User, error) {
	accounts, err := localstore.Load[[]localAccount](ctx, l.store, localstore.KeyUsers)
	if err != nil {
		return nil, err
	}
	users := make([]entities.User, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, a.user())
	}
	return users, nil
}

// DeleteAccount removes an on-device account. Its chapters stay behind and
// can still be pushed; deleting the signed-in account also signs it out.
func (l *Local) DeleteAccount(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	accounts, err := localstore.Load[[]localAccount](ctx, l.store, localstore.KeyUsers)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(accounts, func(a localAccount) bool { return a.ID == id })
	if i < 0 {
		return apperr.NotFound("User")
	}
	accounts = slices.Delete(accounts, i, i+1)
	if err := localstore.Save(ctx, l.store, localstore.KeyUsers, accounts); err != nil {
		return err
	}

	token, err := localstore.Load[string](ctx, l.store, localstore.KeyToken)
	if err != nil {
		return err
	}
	if token == localTokenPrefix+id {
		return forgetSession(ctx, l.store)
	}
	return nil
}

// Reset deletes every on-device key: accounts, the session, the study tree,
// flashcards and saved quizzes.
func (l *Local) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range localstore.AllKeys {
		if err := l.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

// CountChapters reports how many chapters are stored on-device for all users.
func (l *Local) CountChapters(ctx context.Context) (int, error) {
	chapters, err := localstore.Load[[]entities.Chapter](ctx, l.store, localstore.KeyChapters)
	return len(chapters), err
}

// PendingChapters returns every chapter created on-device, whoever owned it
// at the time, with full nesting. Sign-ins replace the stored user snapshot,
// so these are found by id rather than by owner.
func (l *Local) PendingChapters(ctx context.Context) ([]entities.Chapter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	chapters := []entities.Chapter{}
	for _, c := range st.chapters {
		if !entities.IsLocalID(c.ID) {
			continue
		}
		slices.SortStableFunc(c.Topics, topicOrder)
		st.joinChapter(&c)
		chapters = append(chapters, c)
	}
	slices.SortStableFunc(chapters, chapterOrder)
	return chapters, nil
}

// forgetChapter removes a chapter and its flashcards regardless of owner.
func (l *Local) forgetChapter(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, err := l.load(ctx)
	if err != nil {
		return err
	}
	ci := slices.IndexFunc(st.chapters, func(c entities.Chapter) bool { return c.ID == id })
	if ci < 0 {
		return apperr.NotFound("Chapter")
	}
	removeChapter(st, ci)
	return l.save(ctx, st)
}

// owned returns the index of the user's chapter with id, or -1.
func owned(st *state, userID, id string) int {
	return slices.IndexFunc(st.chapters, func(c entities.Chapter) bool {
		return c.ID == id && c.UserID == userID
	})
}

// findTopic locates a topic inside the user's chapters.
func findTopic(st *state, userID, id string) (ci, ti int, ok bool) {
	for ci := range st.chapters {
		if st.chapters[ci].UserID != userID {
			continue
		}
		for ti := range st.chapters[ci].Topics {
			if st.chapters[ci].Topics[ti].ID == id {
				return ci, ti, true
			}
		}
	}
	return 0, 0, false
}

// findItem locates an item inside the user's chapters.
func findItem(st *state, userID, id string) (ci, ti, ii int, ok bool) {
	for ci := range st.chapters {
		if st.chapters[ci].UserID != userID {
			continue
		}
		for ti := range st.chapters[ci].Topics {
			for ii := range st.chapters[ci].Topics[ti].Items {
				if st.chapters[ci].Topics[ti].Items[ii].ID == id {
					return ci, ti, ii, true
				}
			}
		}
	}
	return 0, 0, 0, false
}

// removeChapter drops the chapter at ci along with its items' flashcards.
func removeChapter(st *state, ci int) {
	removed := map[string]bool{}
	for _, t := range st.chapters[ci].Topics {
		topicItemIDs(t, removed)
	}
	st.chapters = slices.Delete(st.chapters, ci, ci+1)
	dropCards(st, removed)
}

// dropCards removes the flashcards of the given items.
func dropCards(st *state, itemIDs map[string]bool) {
	st.cards = slices.DeleteFunc(st.cards, func(f entities.Flashcard) bool {
		return itemIDs[f.ItemID]
	})
}

func topicItemIDs(t entities.Topic, into map[string]bool) {
	for _, item := range t.Items {
		into[item.ID] = true
	}
}

func (st *state) cardFor(itemID string) *entities.Flashcard {
	for i := range st.cards {
		if st.cards[i].ItemID == itemID {
			card := st.cards[i]
			return &card
		}
	}
	return nil
}

func (st *state) joinItem(item *entities.Item) {
	item.Flashcard = st.cardFor(item.ID)
	item.Hydrate()
}

func (st *state) joinTopic(t *entities.Topic, chapterID string) {
	t.Hydrate(chapterID)
	for i := range t.Items {
		st.joinItem(&t.Items[i])
	}
}

func (st *state) joinChapter(c *entities.Chapter) {
	c.Hydrate()
	for i := range c.Topics {
		st.joinTopic(&c.Topics[i], c.ID)
	}
}

func byOrder[T any](order func(T) int, created func(T) time.Time) func(a, b T) int {
	return func(a, b T) int {
		if d := order(a) - order(b); d != 0 {
			return d
		}
		return created(a).Compare(created(b))
	}
}

var (
	chapterOrder = byOrder(func(c entities.Chapter) int { return c.Order }, func(c entities.Chapter) time.Time { return c.CreatedAt })
	topicOrder   = byOrder(func(t entities.Topic) int { return t.Order }, func(t entities.Topic) time.Time { return t.CreatedAt })
)

// ListChapters returns the user's chapters with full nesting, ordered by order.
func (l *Local) ListChapters(ctx context.Context) ([]entities.Chapter, error) {
	user, st, done, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	chapters := []entities.Chapter{}
	for _, c := range st.chapters {
		if c.UserID != user.ID {
			continue
		}
		slices.SortStableFunc(c.Topics, topicOrder)
		st.joinChapter(&c)
		chapters = append(chapters, c)
	}
	slices.SortStableFunc(chapters, chapterOrder)
	return chapters, nil
}

func (l *Local) CreateChapter(ctx context.Context, in entities.NewChapter) (*entities.Chapter, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, st, done, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	maxOrder := 0
	for _, c := range st.chapters {
		if c.UserID == user.ID && c.Order > maxOrder {
			maxOrder = c.Order
		}
	}

	now := l.now()
	chapter := entities.Chapter{
		ID:          entities.NewLocalID("chapter"),
		UserID:      user.ID,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		Order:       maxOrder + 1,
		Topics:      []entities.Topic{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	st.chapters = append(st.chapters, chapter)
	if err := l.saveChapters(ctx, st); err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (l *Local) UpdateChapter(ctx context.Context, id string, patch entities.ChapterPatch) (*entities.Chapter, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	user, st, done, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	ci := owned(st, user.ID, id)
	if ci < 0 {
		return nil, apperr.NotFound("Chapter")
	}
	patch.Apply(&st.chapters[ci])
	st.chapters[ci].UpdatedAt = l.now()
	if err := l.saveChapters(ctx, st); err != nil {
		return nil, err
	}

	chapter := st.chapters[ci]
	st.joinChapter(&chapter)
	return &chapter, nil
}

// DeleteChapter removes the chapter with its topics, items and flashcards.
func (l *Local) DeleteChapter(ctx context.Context, id string) error {
	user, st, done, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	ci := owned(st, user.ID, id)
	if ci < 0 {
		return apperr.NotFound("Chapter")
	}

	removeChapter(st, ci)
	return l.save(ctx, st)
}

func (l *Local) CreateTopic(ctx context.Context, chapterID string, in entities.NewTopic) (*entities.Topic, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, st, done, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	ci := owned(st, user.ID, chapterID)
	if ci < 0 {
		return nil, apperr.NotFound("Chapter")
	}

	maxOrder := 0
	for _, t := range st.chapters[ci].Topics {
		maxOrder = max(maxOrder, t.Order)
	}

	now := l.now()
	topic := entities.Topic{
		ID:          entities.NewLocalID("topic"),
		ChapterID:   chapterID,
		Name:        in.Name,
		Description: in.Description,
		Order:       maxOrder + 1,
		Items:       []entities.Item{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	st.chapters[ci].Topics = append(st.chapters[ci].Topics, topic)
	if err := l.saveChapters(ctx, st); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (l *Local) UpdateTopic(ctx context.Context, id string, patch entities.TopicPatch) (*entities.Topic, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	user, st, done, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	ci, ti, ok := findTopic(st, user.ID, id)
	if !ok {
		return nil, apperr.NotFound("Topic")
	}
	topic := &st.chapters[ci].Topics[ti]
	patch.Apply(topic)
	topic.UpdatedAt = l.now()
	if err := l.saveChapters(ctx, st); err != nil {
		return nil, err
	}

	updated := *topic
	st.joinTopic(&updated, st.chapters[ci].ID)
	return &updated, nil
}

// DeleteTopic removes the topic with its items and their flashcards.
func (l *Local) DeleteTopic(ctx context.Context, id string) error {
	user, st, done, err := l.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	ci, ti, ok := findTopic(st, user.ID, id)
	if !ok {
		return apperr.NotFound("Topic")
	}

	removed := map[string]bool{}
	topicItemIDs(st.chapters[ci].Topics[ti], removed)
	st.chapters[ci].Topics = slices.Delete(st.chapters[ci].Topics, ti, ti+1)
	dropCards(st, removed)
	return l.save(ctx, st)
}
