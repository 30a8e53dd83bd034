// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Engine Stores
//
//   - catalog.Store: series, editions, volumes, ownership and wishlist persistence
//     with a WithinTx hook (internal/catalog/store.go)
//   - loans.Store: ownership checks and loan rows (internal/loans/store.go)
//
// Both are implemented over GORM in internal/database/stores.go. Repository
// finders return (nil, nil) when a row is absent; CreateOrGet inserts with
// ON CONFLICT DO NOTHING and re-reads by the unique key.
//
// ## External Service Interfaces
//
//   - lookup.Provider: bibliographic lookups by ISBN, API id or free text
//     (internal/lookup/provider.go)
//
// ## Events
//
//   - events.Sink: receives VolumeAddedToCollection after the owning
//     transaction commits. Sinks are combined with events.Multi; a failing sink
//     is logged and never fails the catalog operation.
//
// ## Background Work
//
//   - tasks.VolumeSource, tasks.CoverFetcher: inputs of the cover caching queue
//   - tasks.AuditEventCleaner: input of the audit retention queue
//   - scheduler.AuditCleanupEnqueuer: what the cron schedule triggers
//
// # Adding a New Lookup Provider
//
//  1. Implement lookup.Provider in internal/lookup/
//
//     type GoogleBooksClient struct {
//         apiKey     string
//         httpClient *http.Client
//     }
//
//     func (c *GoogleBooksClient) FindByISBN(ctx context.Context, isbn string) (*Candidate, error)
//
//  2. Add a compile-time check to checks.go
//
//  3. Select it in entrypoint.NewServices
//
// # Adding a New Event Sink
//
//  1. Implement events.Sink
//
//     type WebhookSink struct{ URL string }
//
//     func (s WebhookSink) Publish(ctx context.Context, evt events.VolumeAddedToCollection) error
//
//  2. Append it to the sinks in entrypoint.NewServices
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
