package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFixture(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	testContent := []byte("test fixture content")

	if err := os.WriteFile(testFile, testContent, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := LoadFixture(t, testFile)
	if string(result) != string(testContent) {
		t.Errorf("expected %q, got %q", testContent, result)
	}
}

func TestLoadFixtureJSON(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.json")
	testData := map[string]any{
		"name":  "test",
		"value": 42,
	}

	jsonData, err := json.Marshal(testData)
	if err != nil {
		t.Fatalf("failed to marshal test data: %v", err)
	}

	if err := os.WriteFile(testFile, jsonData, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	var result map[string]any
	LoadFixtureJSON(t, testFile, &result)

	if result["name"] != "test" {
		t.Errorf("expected name=test, got %v", result["name"])
	}
	if result["value"] != float64(42) { // JSON unmarshals numbers as float64
		t.Errorf("expected value=42, got %v", result["value"])
	}
}

func TestSampleKaizens(t *testing.T) {
	records := SampleKaizens(t)
	if len(records) != 3 {
		t.Fatalf("expected 3 sample records, got %d", len(records))
	}
	for i, r := range records {
		if r.ID != "" {
			t.Errorf("record %d: expected id to be stripped, got %q", i, r.ID)
		}
		if r.Title == "" {
			t.Errorf("record %d: expected a title", i)
		}
	}
	if !records[1].Benefits.HasOther() || records[1].Other == "" {
		t.Error("expected second sample to carry the other benefit and its elaboration")
	}
}

func TestFixturePath(t *testing.T) {
	if got := FixturePath("kaizens.json"); got != filepath.Join("testdata", "kaizens.json") {
		t.Errorf("unexpected fixture path %q", got)
	}
}
