package backend

import (
	"context"
	"time"

	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
)

// Backend is the spreadsheet store handed to the services.
type Backend interface {
	sheets.Workbook
	sheets.Pinger
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleCredentials   gsheet.Credentials

	// Memory backend specific
	DataDirectory string

	// Read cache; a zero TTL disables it
	CacheTTL  time.Duration
	CacheSize int
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
