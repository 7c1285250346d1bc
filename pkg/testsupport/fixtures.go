package testsupport

import (
	"embed"
	"encoding/json"
	"path"
	"testing"
)

//go:embed testdata/*.json
var fixtures embed.FS

// LoadFixture returns the raw bytes of a named fixture from testdata.
// Fixtures are embedded so any package can load them.
func LoadFixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", name, err)
	}
	return data
}

// LoadFixtureJSON decodes a named JSON fixture into dest.
func LoadFixtureJSON(t testing.TB, name string, dest any) {
	t.Helper()

	if err := json.Unmarshal(LoadFixture(t, name), dest); err != nil {
		t.Fatalf("failed to unmarshal fixture %s: %v", name, err)
	}
}

// SeedFixture decodes a JSON array fixture and seeds repo with its records.
func SeedFixture[T any](t testing.TB, repo *MemoryRepository[T], name string) []T {
	t.Helper()

	var records []T
	LoadFixtureJSON(t, name, &records)
	repo.Seed(records...)
	return records
}

func FixturePath(name string) string {
	return path.Join("testdata", name)
}
