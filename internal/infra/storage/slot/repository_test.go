package slot

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Репозиторий и миграция описывают колонки независимо,
// расхождение ломает все запросы к parking_slots на рантайме.
func TestSlotColumns_MatchMigration(t *testing.T) {
	ddl, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", "001_init.sql"))
	if err != nil {
		t.Fatalf("failed to read migration: %v", err)
	}

	table := extractTable(t, string(ddl), "parking_slots")

	for _, column := range slotColumns {
		pattern := regexp.MustCompile(`(?m)^\s+` + column + `\s`)
		assert.True(t, pattern.MatchString(table),
			"column %q is read by the repository but missing from parking_slots DDL", column)
	}
}

func extractTable(t *testing.T, ddl, name string) string {
	t.Helper()

	start := strings.Index(ddl, "CREATE TABLE IF NOT EXISTS "+name)
	if start < 0 {
		t.Fatalf("table %q not found in migration", name)
	}

	end := strings.Index(ddl[start:], ");")
	if end < 0 {
		t.Fatalf("unterminated DDL for table %q", name)
	}

	return ddl[start : start+end]
}
