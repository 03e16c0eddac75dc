package cleanup

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseExtraCleanupsKeepsOrder(t *testing.T) {
	data := []byte(`
Widgets:
  - Soft Deleted Things
Secrets:
  - Hard Deleted Permissions
  - Soft Deleted Users
`)
	got, err := ParseExtraCleanups(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []TableJobs{
		{Table: "Widgets", Jobs: []string{"Soft Deleted Things"}},
		{Table: "Secrets", Jobs: []string{"Hard Deleted Permissions", "Soft Deleted Users"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("entries = %#v, want %#v", got, want)
	}
}

func TestParseExtraCleanupsEmpty(t *testing.T) {
	for _, data := range []string{"", "# nothing\n"} {
		got, err := ParseExtraCleanups([]byte(data))
		if err != nil {
			t.Fatalf("parse %q: %v", data, err)
		}
		if len(got) != 0 {
			t.Fatalf("parse %q = %v, want none", data, got)
		}
	}
}

func TestParseExtraCleanupsRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"sequence root":  "- Widgets\n",
		"scalar jobs":    "Widgets: Soft Deleted Things\n",
		"empty job":      "Widgets:\n  - \"  \"\n",
		"empty table":    "\"\":\n  - Soft Deleted Things\n",
		"malformed yaml": "Widgets: [\n",
	}
	for name, data := range tests {
		if _, err := ParseExtraCleanups([]byte(data)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadExtraCleanups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	if err := os.WriteFile(path, []byte("Comments:\n  - Hard Deleted Users\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadExtraCleanups(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Table != "Comments" {
		t.Fatalf("entries = %#v", got)
	}
	if _, err := LoadExtraCleanups(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
