package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./mangashelf.db"

	DefaultLookupBaseURL = "https://openlibrary.org"
	DefaultCoversBaseURL = "https://covers.openlibrary.org"

	// DefaultUserID owns every request when authentication is disabled.
	DefaultUserID = 1
)
