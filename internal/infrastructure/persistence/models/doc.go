// Package models contains GORM-specific persistence models that map to the
// embedded store's tables. The domain layer stays free of ORM tags; each
// model converts to and from its domain type.
//
// Timestamps are stored as unix milliseconds and money as decimal text so
// that the sqlite file stays readable by other tools.
package models
