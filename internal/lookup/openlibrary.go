package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL       = "https://openlibrary.org"
	defaultCoversBaseURL = "https://covers.openlibrary.org"
	defaultUserAgent     = "mangashelf/1.0"
	searchLimit          = 10
)

// errNotFound is internal; public methods turn it into a nil candidate.
var errNotFound = errors.New("not found")

// Options configures the OpenLibrary client. Zero values fall back to defaults.
type Options struct {
	BaseURL           string
	CoversBaseURL     string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond int
	MaxRetries        int
}

// OpenLibraryClient fetches volume candidates from the OpenLibrary API.
type OpenLibraryClient struct {
	httpClient    *http.Client
	baseURL       string
	coversBaseURL string
	userAgent     string
	limiter       *rate.Limiter
	maxRetries    int
	backoff       time.Duration
}

// NewOpenLibraryClient creates a new OpenLibrary API client with rate limiting.
func NewOpenLibraryClient(opts Options) *OpenLibraryClient {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.CoversBaseURL == "" {
		opts.CoversBaseURL = defaultCoversBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Second/time.Duration(opts.RequestsPerSecond)), 1)
	}

	return &OpenLibraryClient{
		httpClient:    &http.Client{Timeout: opts.Timeout},
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		coversBaseURL: strings.TrimRight(opts.CoversBaseURL, "/"),
		userAgent:     opts.UserAgent,
		limiter:       limiter,
		maxRetries:    opts.MaxRetries,
		backoff:       time.Second,
	}
}

// Search runs a free-text query and returns up to ten candidates.
func (c *OpenLibraryClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	var result openLibrarySearchResult
	path := fmt.Sprintf("/search.json?q=%s&limit=%d", url.QueryEscape(query), searchLimit)
	if err := c.getJSON(ctx, path, &result); err != nil {
		if errors.Is(err, errNotFound) {
			return []Candidate{}, nil
		}
		return nil, fmt.Errorf("search: %w", err)
	}

	candidates := make([]Candidate, 0, len(result.Docs))
	for i := range result.Docs {
		candidates = append(candidates, c.candidateFromSearchDoc(&result.Docs[i]))
	}
	return candidates, nil
}

// FindByISBN looks up an edition by ISBN-10 or ISBN-13.
func (c *OpenLibraryClient) FindByISBN(ctx context.Context, isbn string) (*Candidate, error) {
	normalized := NormalizeISBN(isbn)
	if normalized == "" {
		return nil, nil
	}

	var edition openLibraryEdition
	if err := c.getJSON(ctx, "/isbn/"+normalized+".json", &edition); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch ISBN %s: %w", normalized, err)
	}

	candidate := c.candidateFromEdition(ctx, &edition)
	if candidate.ISBN == "" {
		candidate.ISBN = normalized
	}
	if candidate.CoverURL == "" {
		candidate.CoverURL = fmt.Sprintf("%s/b/isbn/%s-L.jpg", c.coversBaseURL, normalized)
	}
	return candidate, nil
}

// FindByAPIID looks up an edition by its OpenLibrary key, e.g. "OL7353617M".
func (c *OpenLibraryClient) FindByAPIID(ctx context.Context, apiID string) (*Candidate, error) {
	key := strings.TrimPrefix(strings.TrimSpace(apiID), "/books/")
	if key == "" {
		return nil, nil
	}

	var edition openLibraryEdition
	if err := c.getJSON(ctx, "/books/"+url.PathEscape(key)+".json", &edition); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch edition %s: %w", key, err)
	}

	return c.candidateFromEdition(ctx, &edition), nil
}

// getJSON performs a rate-limited GET with exponential backoff on 429 and 5xx responses.
func (c *OpenLibraryClient) getJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := c.doGet(ctx, path, out)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *OpenLibraryClient) doGet(ctx context.Context, path string, out any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, errNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, resp.Body)
		return true, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}

func (c *OpenLibraryClient) candidateFromEdition(ctx context.Context, edition *openLibraryEdition) *Candidate {
	candidate := &Candidate{
		Title:         editionTitle(edition),
		Description:   textValue(edition.Description),
		PublishedDate: edition.PublishDate,
		APIID:         strings.TrimPrefix(edition.Key, "/books/"),
	}
	if edition.NumberOfPages > 0 {
		pages := edition.NumberOfPages
		candidate.PageCount = &pages
	}

	if len(edition.ISBN13) > 0 {
		candidate.ISBN = edition.ISBN13[0]
	} else if len(edition.ISBN10) > 0 {
		candidate.ISBN = edition.ISBN10[0]
	}

	if len(edition.Covers) > 0 && edition.Covers[0] > 0 {
		candidate.CoverURL = fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversBaseURL, edition.Covers[0])
	} else if candidate.ISBN != "" {
		candidate.CoverURL = fmt.Sprintf("%s/b/isbn/%s-L.jpg", c.coversBaseURL, candidate.ISBN)
	}

	// Author names live on separate documents; a failed fetch only drops the name.
	for _, ref := range edition.Authors {
		name, err := c.fetchAuthorName(ctx, ref.Key)
		if err == nil && name != "" {
			candidate.Authors = append(candidate.Authors, name)
		}
	}
	if candidate.Authors == nil {
		candidate.Authors = []string{}
	}

	return candidate
}

func (c *OpenLibraryClient) candidateFromSearchDoc(doc *openLibrarySearchDoc) Candidate {
	candidate := Candidate{
		Title:   doc.Title,
		Authors: doc.AuthorName,
	}
	if candidate.Authors == nil {
		candidate.Authors = []string{}
	}
	if doc.FirstPublishYear > 0 {
		candidate.PublishedDate = fmt.Sprintf("%d", doc.FirstPublishYear)
	}
	if doc.NumberOfPagesMedian > 0 {
		pages := doc.NumberOfPagesMedian
		candidate.PageCount = &pages
	}
	if len(doc.ISBN) > 0 {
		candidate.ISBN = doc.ISBN[0]
	}
	if doc.CoverEditionKey != "" {
		candidate.APIID = doc.CoverEditionKey
	}

	if doc.CoverI != 0 {
		candidate.CoverURL = fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversBaseURL, doc.CoverI)
	} else if candidate.ISBN != "" {
		candidate.CoverURL = fmt.Sprintf("%s/b/isbn/%s-L.jpg", c.coversBaseURL, candidate.ISBN)
	}
	return candidate
}

func (c *OpenLibraryClient) fetchAuthorName(ctx context.Context, authorKey string) (string, error) {
	if authorKey == "" {
		return "", fmt.Errorf("empty author key")
	}

	var author struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, authorKey+".json", &author); err != nil {
		return "", err
	}
	return author.Name, nil
}

// NormalizeISBN strips hyphens and spaces. Returns "" unless the result is 10 or 13 characters.
func NormalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	return isbn
}

func editionTitle(edition *openLibraryEdition) string {
	title := strings.TrimSpace(edition.Title)
	if edition.Subtitle != "" && title != "" {
		// Fold a "Vol. 1" style subtitle back into the title so the number is not lost.
		if strings.HasPrefix(strings.ToLower(edition.Subtitle), "vol") ||
			strings.HasPrefix(strings.ToLower(edition.Subtitle), "tome") {
			title = title + ", " + strings.TrimSpace(edition.Subtitle)
		}
	}
	return title
}

// textValue unwraps OpenLibrary text fields, which can be a string or {type, value}.
func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if val, ok := t["value"].(string); ok {
			return val
		}
	}
	return ""
}

// OpenLibrary API response types (internal)

type openLibraryEdition struct {
	Key           string      `json:"key"`
	Title         string      `json:"title"`
	Subtitle      string      `json:"subtitle"`
	Authors       []authorRef `json:"authors"`
	Publishers    []string    `json:"publishers"`
	PublishDate   string      `json:"publish_date"`
	ISBN10        []string    `json:"isbn_10"`
	ISBN13        []string    `json:"isbn_13"`
	NumberOfPages int         `json:"number_of_pages"`
	Description   any         `json:"description"`
	Covers        []int       `json:"covers"`
}

type authorRef struct {
	Key string `json:"key"`
}

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    int      `json:"first_publish_year"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
	ISBN                []string `json:"isbn"`
	CoverI              int      `json:"cover_i"`
	CoverEditionKey     string   `json:"cover_edition_key"`
}
