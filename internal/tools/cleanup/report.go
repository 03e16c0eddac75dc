package cleanup

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/louisbranch/passkeep/internal/platform/i18n/catalog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const ruleWidth = 63

// JobResult is the count one job returned.
type JobResult struct {
	Table string `json:"table"`
	Job   string `json:"job"`
	Count int    `json:"count"`
}

// Report aggregates one run. Jobs keeps zero counts.
type Report struct {
	DryRun bool        `json:"-"`
	Jobs   []JobResult `json:"jobs"`
	Total  int         `json:"total"`
}

// Mode names the run mode for machine-readable output.
func (r Report) Mode() string {
	if r.DryRun {
		return "dry-run"
	}
	return "fix"
}

// Localizer renders report lines for one locale.
type Localizer struct {
	locale  string
	printer *message.Printer
	lower   cases.Caser
}

// NewLocalizer returns a localizer for locale, falling back to the bundle's
// base locale.
func NewLocalizer(bundle *catalog.Bundle, locale string) *Localizer {
	resolved := strings.TrimSpace(locale)
	if !bundle.HasLocale(resolved) {
		resolved = catalog.BaseLocale
	}
	return &Localizer{
		locale:  resolved,
		printer: bundle.Printer(resolved),
		lower:   cases.Lower(language.Make(resolved)),
	}
}

// Locale returns the resolved locale.
func (l *Localizer) Locale() string {
	return l.locale
}

// Sprintf formats a catalog key. Counts are passed as strings so they print
// without locale digit grouping.
func (l *Localizer) Sprintf(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// WriteHeader writes the run banner and a horizontal rule.
func WriteHeader(w io.Writer, l *Localizer, dryRun bool) error {
	mode := l.Sprintf("cleanup.mode.fix")
	if dryRun {
		mode = l.Sprintf("cleanup.mode.dry_run")
	}
	if _, err := fmt.Fprintln(w, l.Sprintf("cleanup.header")+mode); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
	return err
}

// WriteJobLines writes one line for every job with a nonzero count.
func (r Report) WriteJobLines(w io.Writer, l *Localizer) error {
	key := "cleanup.issues_fixed"
	if r.DryRun {
		key = "cleanup.issues_found"
	}
	for _, job := range r.Jobs {
		if job.Count == 0 {
			continue
		}
		if _, err := fmt.Fprintln(w, l.Sprintf(key, strconv.Itoa(job.Count), job.Table, l.lower.String(job.Job))); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary writes the closing line for a completed run.
func (r Report) WriteSummary(w io.Writer, l *Localizer) error {
	var line string
	switch {
	case r.Total == 0:
		line = l.Sprintf("cleanup.summary.clean")
	case r.DryRun:
		line = l.Sprintf("cleanup.summary.detected", strconv.Itoa(r.Total))
	default:
		line = l.Sprintf("cleanup.summary.fixed", strconv.Itoa(r.Total))
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// WriteText writes the job lines followed by the summary.
func (r Report) WriteText(w io.Writer, l *Localizer) error {
	if err := r.WriteJobLines(w, l); err != nil {
		return err
	}
	return r.WriteSummary(w, l)
}

type jsonReport struct {
	Mode  string         `json:"mode"`
	Jobs  []JobResult    `json:"jobs"`
	Total int            `json:"total"`
	Error *failureReport `json:"error,omitempty"`
}

// WriteJSON writes the report as one JSON object.
func (r Report) WriteJSON(w io.Writer) error {
	return writeJSON(w, r, nil)
}

func writeJSON(w io.Writer, r Report, failure *failureReport) error {
	jobs := r.Jobs
	if jobs == nil {
		jobs = []JobResult{}
	}
	encoded, err := json.Marshal(jsonReport{Mode: r.Mode(), Jobs: jobs, Total: r.Total, Error: failure})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
