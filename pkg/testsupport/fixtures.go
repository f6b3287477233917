package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-kaizen/kaizen"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// SampleKaizens returns the records in testdata/kaizens.json, ids stripped so
// they can be handed to Create.
func SampleKaizens(t *testing.T) []kaizen.Kaizen {
	t.Helper()

	var records []kaizen.Kaizen
	LoadFixtureJSON(t, filepath.Join(moduleDir(t), "testdata", "kaizens.json"), &records)
	for i := range records {
		records[i].ID = ""
	}
	return records
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// moduleDir resolves this package's directory so fixtures load from any test package.
func moduleDir(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to resolve working directory: %v", err)
	}
	for {
		candidate := filepath.Join(dir, "pkg", "testsupport")
		if _, err := os.Stat(filepath.Join(candidate, "testdata", "kaizens.json")); err == nil {
			return candidate
		}
		if _, err := os.Stat(filepath.Join(dir, "testdata", "kaizens.json")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not locate pkg/testsupport/testdata from %s", dir)
		}
		dir = parent
	}
}
