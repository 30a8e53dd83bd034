// Package lookup queries external bibliographic services for volume candidates.
//
// # Usage
//
//	client := lookup.NewOpenLibraryClient(lookup.Options{BaseURL: cfg.Lookup.BaseURL})
//	candidate, err := client.FindByISBN(ctx, "9782505004479")
//	if candidate == nil {
//		// not in the catalog
//	}
package lookup

import "context"

// Candidate is a book-level record returned by a provider.
type Candidate struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	PageCount     *int     `json:"page_count,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	APIID         string   `json:"api_id,omitempty"`
}

// Provider is a bibliographic lookup service.
// FindByISBN and FindByAPIID return (nil, nil) when the service has no match.
type Provider interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
	FindByISBN(ctx context.Context, isbn string) (*Candidate, error)
	FindByAPIID(ctx context.Context, apiID string) (*Candidate, error)
}
