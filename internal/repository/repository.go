// Package repository persists the set of already-notified filing
// identities together with the last-observed total disclosure count
// per filing year. The identity set is the sole dedup authority and is
// append-only; the count map is a monitoring signal and may be stale
// without affecting correctness.
package repository

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// stateFile is the on-disk JSON shape. The bare LegacyCount field is
// accepted on read only; Persist always writes the per-year map.
type stateFile struct {
	ProcessedDisclosures []string       `json:"processed_disclosures"`
	CountsByYear         map[string]int `json:"total_disclosure_counts_by_year,omitempty"`
	LegacyCount          *int           `json:"total_disclosure_count,omitempty"`
}

// Repository is the persisted document store. All mutation happens on
// the single active processing worker; the mutex only covers the
// concurrent reads the status surface may issue.
type Repository struct {
	path string
	log  *slog.Logger

	mu     sync.Mutex
	known  map[string]struct{}
	counts map[string]int
}

// New creates a repository backed by the given state file. Call Load
// before use.
func New(path string, log *slog.Logger) *Repository {
	return &Repository{
		path:   path,
		log:    log,
		known:  make(map[string]struct{}),
		counts: make(map[string]int),
	}
}

// Load reads persisted state from disk. A missing file or any decode
// failure leaves the repository empty and logs a warning; no error is
// returned to the caller. A legacy single-count field is migrated
// in-memory into the per-year map under currentYear; disk is not
// rewritten until the next Persist.
func (r *Repository) Load(currentYear string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.known = make(map[string]struct{})
	r.counts = make(map[string]int)

	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.log.Warn("error loading disclosures file", "path", r.path, "error", err)
		}
		return
	}

	var state stateFile
	if err := json.Unmarshal(data, &state); err != nil {
		r.log.Warn("error decoding disclosures file", "path", r.path, "error", err)
		return
	}

	for _, id := range state.ProcessedDisclosures {
		r.known[id] = struct{}{}
	}
	if state.LegacyCount != nil && state.CountsByYear == nil {
		r.counts[currentYear] = *state.LegacyCount
	} else {
		for year, n := range state.CountsByYear {
			r.counts[year] = n
		}
	}

	r.log.Info("loaded known disclosures",
		"count", len(r.known),
		"expected_total", r.counts[currentYear],
		"year", currentYear)
}

// Contains reports whether the filing identity has been recorded.
func (r *Repository) Contains(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.known[identity]
	return ok
}

// Record inserts a filing identity. Idempotent.
func (r *Repository) Record(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[identity] = struct{}{}
}

// ExpectedCount returns the last-observed total disclosure count for
// the year, or 0 when the year has not been seen.
func (r *Repository) ExpectedCount(year string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[year]
}

// SetExpectedCount stores the observed total disclosure count for the
// year.
func (r *Repository) SetExpectedCount(year string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[year] = count
}

// Persist atomically overwrites the state file with the full current
// state. A write failure is logged, not returned: the in-memory state
// remains authoritative for the rest of the process.
func (r *Repository) Persist() {
	r.mu.Lock()
	state := stateFile{
		ProcessedDisclosures: make([]string, 0, len(r.known)),
		CountsByYear:         make(map[string]int, len(r.counts)),
	}
	for id := range r.known {
		state.ProcessedDisclosures = append(state.ProcessedDisclosures, id)
	}
	for year, n := range r.counts {
		state.CountsByYear[year] = n
	}
	r.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		r.log.Error("error encoding disclosures file", "error", err)
		return
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		r.log.Error("error saving disclosures file", "path", r.path, "error", err)
		return
	}
	if err := os.Rename(tmp, r.path); err != nil {
		r.log.Error("error saving disclosures file", "path", r.path, "error", err)
	}
}

// Size returns the number of recorded filing identities.
func (r *Repository) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.known)
}

// Counts returns a copy of the per-year count map.
func (r *Repository) Counts() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.counts))
	for year, n := range r.counts {
		out[year] = n
	}
	return out
}
