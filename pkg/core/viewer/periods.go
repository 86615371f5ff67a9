package viewer

import (
	"sort"
	"strings"
	"time"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/xbrl"
)

// =============================================================================
// PERIOD EXTRACTION - Derive target periods from the raw fact set
// =============================================================================

// ParsePeriod interprets a raw period string. A bare ISO date is an instant;
// "start/end" is a duration ending on the second date.
func ParsePeriod(raw string) (Period, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Period{}, false
	}
	if i := strings.Index(raw, "/"); i >= 0 {
		end := raw[i+1:]
		if !validDate(end) || !validDate(raw[:i]) {
			return Period{}, false
		}
		return Period{EndDate: end, Instant: false, Label: formatDate(end)}, true
	}
	if !validDate(raw) {
		return Period{}, false
	}
	return Period{EndDate: raw, Instant: true, Label: formatDate(raw)}, true
}

// ExtractPeriods derives the distinct reporting periods from the fact set,
// newest first. Periods are deduplicated by end date and kind; when an
// instant and a duration share an end date their labels are disambiguated.
func ExtractPeriods(facts []xbrl.Fact) []Period {
	byKey := make(map[string]Period)
	for _, f := range facts {
		p, ok := ParsePeriod(f.Period)
		if !ok {
			continue
		}
		if _, exists := byKey[p.Key()]; !exists {
			byKey[p.Key()] = p
		}
	}

	periods := make([]Period, 0, len(byKey))
	endDateKinds := make(map[string]int)
	for _, p := range byKey {
		periods = append(periods, p)
		endDateKinds[p.EndDate]++
	}

	for i := range periods {
		if endDateKinds[periods[i].EndDate] > 1 {
			if periods[i].Instant {
				periods[i].Label += " (As of)"
			} else {
				periods[i].Label += " (YTD)"
			}
		}
	}

	// Newest first; durations before instants on the same end date so the
	// activity column leads its closing balance.
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].EndDate != periods[j].EndDate {
			return periods[i].EndDate > periods[j].EndDate
		}
		return !periods[i].Instant && periods[j].Instant
	})
	return periods
}

// MatchesPeriod reports whether a fact's raw period string satisfies a target
// period. Instant periods match by exact end date; duration periods match an
// explicit range ending on that date or a bare date equal to the period end.
func MatchesPeriod(rawPeriod string, p Period) bool {
	rawPeriod = strings.TrimSpace(rawPeriod)
	if p.Instant {
		return rawPeriod == p.EndDate
	}
	if rawPeriod == p.EndDate {
		return true
	}
	return strings.HasSuffix(rawPeriod, "/"+p.EndDate) && strings.Count(rawPeriod, "/") == 1
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func formatDate(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}
