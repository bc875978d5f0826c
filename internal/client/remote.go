package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/localstore"
)

const userAgent = "studyctl/1.0"

// StatusError is a non-2xx API response. It unwraps to the matching apperr
// kind, so errors.Is(err, apperr.ErrNotFound) works on remote failures too.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.Code)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	if kind := apperr.FromStatus(e.Code, e.Message); kind != nil {
		return kind
	}
	return nil
}

// Remote talks to the REST API. The session token is read from the
// on-device store on every request and written there after login.
type Remote struct {
	httpClient *http.Client
	baseURL    string
	store      localstore.Store
}

func NewRemote(baseURL string, timeout time.Duration, store localstore.Store) *Remote {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Remote{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		store:      store,
	}
}

func (r *Remote) token(ctx context.Context) string {
	token, _ := localstore.Load[string](ctx, r.store, localstore.KeyToken)
	return token
}

func (r *Remote) newRequest(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := r.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// doJSON sends in as the JSON body (when non-nil) and decodes the response
// into out (when non-nil).
func (r *Remote) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := r.newRequest(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}
	return r.do(req, out)
}

func (r *Remote) do(req *http.Request, out any) error {
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload)
		return &StatusError{Code: resp.StatusCode, Message: payload.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (r *Remote) remember(ctx context.Context, result *entities.AuthResult) error {
	if err := localstore.Save(ctx, r.store, localstore.KeyToken, result.Token); err != nil {
		return err
	}
	return localstore.Save(ctx, r.store, localstore.KeyUser, result.User)
}

func (r *Remote) Register(ctx context.Context, name, email, password string) (*entities.AuthResult, error) {
	var result entities.AuthResult
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := r.doJSON(ctx, http.MethodPost, "/auth/register", body, &result); err != nil {
		return nil, err
	}
	if err := r.remember(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *Remote) Login(ctx context.Context, email, password string) (*entities.AuthResult, error) {
	var result entities.AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := r.doJSON(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	if err := r.remember(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout revokes the session on the server, then forgets it locally.
func (r *Remote) Logout(ctx context.Context) error {
	if err := r.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	return forgetSession(ctx, r.store)
}

func (r *Remote) Me(ctx context.Context) (*entities.User, error) {
	var resp struct {
		User entities.User `json:"user"`
	}
	if err := r.doJSON(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (r *Remote) ListChapters(ctx context.Context) ([]entities.Chapter, error) {
	var chapters []entities.Chapter
	if err := r.doJSON(ctx, http.MethodGet, "/chapters", nil, &chapters); err != nil {
		return nil, err
	}
	return chapters, nil
}

func (r *Remote) CreateChapter(ctx context.Context, in entities.NewChapter) (*entities.Chapter, error) {
	var chapter entities.Chapter
	if err := r.doJSON(ctx, http.MethodPost, "/chapters", in, &chapter); err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (r *Remote) UpdateChapter(ctx context.Context, id string, patch entities.ChapterPatch) (*entities.Chapter, error) {
	var chapter entities.Chapter
	if err := r.doJSON(ctx, http.MethodPut, "/chapters/"+url.PathEscape(id), patch, &chapter); err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (r *Remote) DeleteChapter(ctx context.Context, id string) error {
	return r.doJSON(ctx, http.MethodDelete, "/chapters/"+url.PathEscape(id), nil, nil)
}

func (r *Remote) CreateTopic(ctx context.Context, chapterID string, in entities.NewTopic) (*entities.Topic, error) {
	var topic entities.Topic
	if err := r.doJSON(ctx, http.MethodPost, "/topics/"+url.PathEscape(chapterID), in, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *Remote) UpdateTopic(ctx context.Context, id string, patch entities.TopicPatch) (*entities.Topic, error) {
	var topic entities.Topic
	if err := r.doJSON(ctx, http.MethodPut, "/topics/"+url.PathEscape(id), patch, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *Remote) DeleteTopic(ctx context.Context, id string) error {
	return r.doJSON(ctx, http.MethodDelete, "/topics/"+url.PathEscape(id), nil, nil)
}

func (r *Remote) CreateItem(ctx context.Context, topicID string, in entities.NewItem) (*entities.Item, error) {
	var item entities.Item
	if err := r.doJSON(ctx, http.MethodPost, "/items/"+url.PathEscape(topicID), in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Remote) UpdateItem(ctx context.Context, id string, patch entities.ItemPatch) (*entities.Item, error) {
	var item entities.Item
	if err := r.doJSON(ctx, http.MethodPut, "/items/"+url.PathEscape(id), patch, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Remote) DeleteItem(ctx context.Context, id string) error {
	return r.doJSON(ctx, http.MethodDelete, "/items/"+url.PathEscape(id), nil, nil)
}

// UploadImage posts the image as the "image" field of a multipart form.
func (r *Remote) UploadImage(ctx context.Context, filename string, data []byte) (*entities.UploadResult, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := r.newRequest(ctx, http.MethodPost, "/items/upload", form.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}

	var result entities.UploadResult
	if err := r.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *Remote) ListFlashcards(ctx context.Context) ([]entities.Flashcard, error) {
	var cards []entities.Flashcard
	if err := r.doJSON(ctx, http.MethodGet, "/flashcards", nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *Remote) CreateFlashcard(ctx context.Context, in entities.NewFlashcard) (*entities.Flashcard, error) {
	var card entities.Flashcard
	if err := r.doJSON(ctx, http.MethodPost, "/flashcards", in, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *Remote) UpdateFlashcard(ctx context.Context, id string, patch entities.FlashcardPatch) (*entities.Flashcard, error) {
	var card entities.Flashcard
	if err := r.doJSON(ctx, http.MethodPut, "/flashcards/"+url.PathEscape(id), patch, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *Remote) DeleteFlashcard(ctx context.Context, id string) error {
	return r.doJSON(ctx, http.MethodDelete, "/flashcards/"+url.PathEscape(id), nil, nil)
}

func (r *Remote) Search(ctx context.Context, query, typ string) (entities.SearchResults, error) {
	params := url.Values{}
	params.Set("q", query)
	if typ != "" {
		params.Set("type", typ)
	}

	results := entities.EmptySearchResults()
	if err := r.doJSON(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &results); err != nil {
		return entities.EmptySearchResults(), err
	}
	return results, nil
}
