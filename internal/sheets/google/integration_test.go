//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	ports "fintrack/internal/sheets"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_ReadAllSheets(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if os.Getenv("GOOGLE_SPREADSHEET_ID") == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client, err := NewFromEnv(ctx)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	for _, name := range ports.AllSheets() {
		tbl, err := client.ReadTable(ctx, name)
		if err != nil {
			t.Errorf("read %s: %v", name, err)
			continue
		}
		t.Logf("%s: %d columns, %d rows", name, len(tbl.Header), len(tbl.Rows))
	}
}
