package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/khidmaty/khidmaty-backend/pkg/migrate"
)

func TestContractsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_contracts.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no contracts migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS contracts",
		"CHECK (num_nonnulls(booking_id, quote_id) = 1)",
		"contract_id      uuid NOT NULL UNIQUE",
		"FOREIGN KEY (contract_id) REFERENCES contracts(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS contracts",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationUniqueIndex(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_outbox.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no outbox migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	if !strings.Contains(string(data), "ux_outbox_events_event_aggregate") {
		t.Errorf("missing dedupe unique index")
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}
