package cleanup

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadExtraCleanups reads additional table jobs from a YAML mapping of table
// identifiers to job lists. File order is preserved.
//
//	Secrets:
//	  - Hard Deleted Permissions
//	Widgets:
//	  - Soft Deleted Things
func LoadExtraCleanups(path string) ([]TableJobs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read extra cleanups: %w", err)
	}
	entries, err := ParseExtraCleanups(data)
	if err != nil {
		return nil, fmt.Errorf("parse extra cleanups %s: %w", path, err)
	}
	return entries, nil
}

// ParseExtraCleanups decodes the extra cleanups YAML document.
func ParseExtraCleanups(data []byte) ([]TableJobs, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of table to jobs", root.Line)
	}

	entries := make([]TableJobs, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		table := strings.TrimSpace(key.Value)
		if key.Kind != yaml.ScalarNode || table == "" {
			return nil, fmt.Errorf("line %d: table name must be a non-empty string", key.Line)
		}
		var jobs []string
		if err := value.Decode(&jobs); err != nil {
			return nil, fmt.Errorf("line %d: jobs for %s: %w", value.Line, table, err)
		}
		for _, job := range jobs {
			if strings.TrimSpace(job) == "" {
				return nil, fmt.Errorf("line %d: empty job name for %s", value.Line, table)
			}
		}
		entries = append(entries, TableJobs{Table: table, Jobs: jobs})
	}
	return entries, nil
}
