// Package lookup fetches compound data from PubChem so molecules can be
// filled in from a name.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/config"
	"github.com/mrlokans/pharmastudy/internal/entities"
)

const maxSynonyms = 5

// Compound is the subset of PubChem data a study item uses.
type Compound struct {
	CID              int      `json:"cid"`
	Name             string   `json:"name"`
	MolecularFormula string   `json:"molecularFormula"`
	MolecularWeight  string   `json:"molecularWeight"`
	IUPACName        string   `json:"iupacName,omitempty"`
	Synonyms         []string `json:"synonyms,omitempty"`
	Description      string   `json:"description,omitempty"`
	ImageURL         string   `json:"imageUrl"`
}

// ToProperties converts a compound into item properties.
func (c *Compound) ToProperties() []entities.PropertyInput {
	props := []entities.PropertyInput{
		{Key: "Molecular Formula", Value: c.MolecularFormula},
		{Key: "Molar Mass", Value: c.MolecularWeight + " g/mol"},
		{Key: "CID", Value: strconv.Itoa(c.CID)},
	}
	if c.IUPACName != "" {
		props = append(props, entities.PropertyInput{Key: "IUPAC Name", Value: c.IUPACName})
	}
	if len(c.Synonyms) > 0 {
		props = append(props, entities.PropertyInput{Key: "Synonyms", Value: strings.Join(c.Synonyms, ", ")})
	}
	return props
}

// ImageURL returns the 2D structure image for a compound id.
func ImageURL(cid int) string {
	return imageURL(config.DefaultLookupBaseURL, cid)
}

func imageURL(baseURL string, cid int) string {
	return fmt.Sprintf("%s/compound/cid/%d/PNG", baseURL, cid)
}

// Client talks to the PubChem PUG REST API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		timer := time.NewTimer(r.interval - since)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	r.lastCall = time.Now()
	return nil
}

// NewClient creates a PubChem client. PubChem asks for at most five
// requests per second.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = config.DefaultLookupBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: newRateLimiter(200 * time.Millisecond),
	}
}

// Close drops idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

var errNotFound = errors.New("not found")

// Search resolves a compound by name. It returns (nil, nil) when PubChem
// has no match. Synonyms and description are best effort.
func (c *Client) Search(ctx context.Context, name string) (*Compound, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	var ids cidResponse
	err := c.getJSON(ctx, fmt.Sprintf("/compound/name/%s/cids/JSON", url.PathEscape(name)), &ids)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("search compound: %w", err)
	}
	if len(ids.IdentifierList.CID) == 0 {
		return nil, nil
	}
	cid := ids.IdentifierList.CID[0]

	var props propertyResponse
	path := fmt.Sprintf("/compound/cid/%d/property/IUPACName,MolecularFormula,MolecularWeight/JSON", cid)
	if err := c.getJSON(ctx, path, &props); err != nil {
		return nil, fmt.Errorf("fetch compound properties: %w", err)
	}
	if len(props.PropertyTable.Properties) == 0 {
		return nil, fmt.Errorf("fetch compound properties: empty property table for cid %d", cid)
	}
	p := props.PropertyTable.Properties[0]

	compound := &Compound{
		CID:              cid,
		Name:             name,
		MolecularFormula: p.MolecularFormula,
		MolecularWeight:  p.MolecularWeight.String(),
		IUPACName:        p.IUPACName,
		ImageURL:         imageURL(c.baseURL, cid),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		compound.Synonyms = c.fetchSynonyms(gctx, cid)
		return nil
	})
	g.Go(func() error {
		compound.Description = c.fetchDescription(gctx, cid)
		return nil
	})
	_ = g.Wait()

	return compound, nil
}

func (c *Client) fetchSynonyms(ctx context.Context, cid int) []string {
	var resp informationResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/compound/cid/%d/synonyms/JSON", cid), &resp); err != nil {
		return nil
	}
	if len(resp.InformationList.Information) == 0 {
		return nil
	}
	synonyms := resp.InformationList.Information[0].Synonym
	if len(synonyms) > maxSynonyms {
		synonyms = synonyms[:maxSynonyms]
	}
	return synonyms
}

// PubChem puts the title in the first entry and descriptions after it, so
// take the first entry that has one.
func (c *Client) fetchDescription(ctx context.Context, cid int) string {
	var resp informationResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/compound/cid/%d/description/JSON", cid), &resp); err != nil {
		return ""
	}
	for _, info := range resp.InformationList.Information {
		if info.Description != "" {
			return info.Description
		}
	}
	return ""
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "PharmaStudy/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type cidResponse struct {
	IdentifierList struct {
		CID []int `json:"CID"`
	} `json:"IdentifierList"`
}

type propertyResponse struct {
	PropertyTable struct {
		Properties []struct {
			CID              int         `json:"CID"`
			MolecularFormula string      `json:"MolecularFormula"`
			MolecularWeight  json.Number `json:"MolecularWeight"`
			IUPACName        string      `json:"IUPACName"`
		} `json:"Properties"`
	} `json:"PropertyTable"`
}

type informationResponse struct {
	InformationList struct {
		Information []struct {
			CID         int      `json:"CID"`
			Synonym     []string `json:"Synonym,omitempty"`
			Description string   `json:"Description,omitempty"`
		} `json:"Information"`
	} `json:"InformationList"`
}
