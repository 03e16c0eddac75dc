package cleanup

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TableJobs is an ordered list of cleanup job names for one table.
type TableJobs struct {
	Table string   `json:"table"`
	Jobs  []string `json:"jobs"`
}

// Registry maps table identifiers to ordered cleanup jobs. Tables run in the
// order they were first registered.
type Registry struct {
	order []string
	jobs  map[string][]string
}

// NewRegistry returns an empty registry seeded with entries, merged in order.
func NewRegistry(entries ...TableJobs) *Registry {
	r := &Registry{jobs: map[string][]string{}}
	r.AddCleanups(entries...)
	return r
}

// DefaultRegistry returns a fresh registry holding the default vault cleanups.
func DefaultRegistry() *Registry {
	return NewRegistry(
		TableJobs{Table: "GroupsUsers", Jobs: []string{
			"Soft Deleted Users",
			"Hard Deleted Users",
			"Soft Deleted Groups",
			"Hard Deleted Groups",
		}},
		TableJobs{Table: "Favorites", Jobs: []string{
			"Soft Deleted Users",
			"Hard Deleted Users",
			"Soft Deleted Resources",
			"Hard Deleted Resources",
		}},
		TableJobs{Table: "Comments", Jobs: []string{
			"Soft Deleted Users",
			"Hard Deleted Users",
			"Soft Deleted Resources",
			"Hard Deleted Resources",
		}},
		TableJobs{Table: "Permissions", Jobs: []string{
			"Soft Deleted Users",
			"Hard Deleted Users",
			"Soft Deleted Groups",
			"Hard Deleted Groups",
			"Soft Deleted Resources",
			"Hard Deleted Resources",
		}},
		TableJobs{Table: "Secrets", Jobs: []string{
			"Soft Deleted Users",
			"Hard Deleted Users",
			"Soft Deleted Resources",
			"Hard Deleted Resources",
			"Hard Deleted Permissions",
		}},
	)
}

// AddCleanups appends jobs to each listed table, registering unknown tables
// first. Table names are trimmed. Existing jobs keep their position and
// duplicates are kept.
func (r *Registry) AddCleanups(extra ...TableJobs) {
	if r.jobs == nil {
		r.jobs = map[string][]string{}
	}
	for _, entry := range extra {
		table := strings.TrimSpace(entry.Table)
		if _, ok := r.jobs[table]; !ok {
			r.order = append(r.order, table)
			r.jobs[table] = []string{}
		}
		r.jobs[table] = append(r.jobs[table], entry.Jobs...)
	}
}

// Tables returns the registered table identifiers in run order.
func (r *Registry) Tables() []string {
	return append([]string(nil), r.order...)
}

// Jobs returns a copy of the jobs registered for table.
func (r *Registry) Jobs(table string) []string {
	return append([]string(nil), r.jobs[strings.TrimSpace(table)]...)
}

// OperationName derives the table operation for a job name: "cleanup" followed
// by each word of the job with its first letter upper-cased and whitespace
// removed. "Soft Deleted Users" becomes "cleanupSoftDeletedUsers".
func OperationName(job string) string {
	var b strings.Builder
	b.WriteString("cleanup")
	for _, word := range strings.FieldsFunc(job, unicode.IsSpace) {
		first, size := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(first))
		b.WriteString(word[size:])
	}
	return b.String()
}
