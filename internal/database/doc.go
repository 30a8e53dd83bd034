// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, active loan index
//	├── stores.go        # catalog.Store and loans.Store adapters
//	├── series/          # Series create-or-reuse
//	├── editions/        # Editions per series
//	├── volumes/         # Volumes by ISBN, api id or (edition, number)
//	├── collection/      # Ownership associations
//	├── wishlist/        # Wishlist associations
//	├── loans/           # Loan records
//	├── audit/           # Audit trail
//	└── users/           # User management
//
// # Using the stores
//
//	db, err := database.NewDatabase("./mangashelf.db")
//
//	catalogStore := database.NewCatalogStore(db.DB)
//	loanStore := database.NewLoanStore(db.DB)
//
// Both stores open transactions with WithinTx and rebuild their repositories
// on the transaction handle, so everything inside fn shares one transaction.
//
// # Uniqueness
//
// Deduplication relies on store constraints, not on read-then-write:
// series.title, series.api_id, (editions.series_id, editions.name),
// volumes.isbn, volumes.api_id and the partial index on open loans.
// Repositories insert with ON CONFLICT DO NOTHING and re-read on conflict.
package database
