package match

import (
	"fmt"
	"sort"
	"time"
)

// Stats accumulates counters for one worker (or one whole run after merge).
// Not safe for concurrent use; each worker owns its own and the batch merges
// them afterwards.
type Stats struct {
	TotalRecords      int
	SuccessfulMatches int
	StateFailures     int
	CityFailures      int

	StateExact    int
	StateMultiple int
	StateNone     int

	CityExact    int
	CityMultiple int
	CityNone     int

	EmptyCountryCodes int
	EmptyStateNames   int
	EmptyCityNames    int

	QueryCount int

	FailedCountries map[string]struct{}
	FailedStates    map[string]struct{}
	FailedCities    map[string]struct{}
}

// NewStats returns a zeroed accumulator with the sets allocated.
func NewStats() *Stats {
	return &Stats{
		FailedCountries: make(map[string]struct{}),
		FailedStates:    make(map[string]struct{}),
		FailedCities:    make(map[string]struct{}),
	}
}

// Merge folds other into s.
func (s *Stats) Merge(other *Stats) {
	s.TotalRecords += other.TotalRecords
	s.SuccessfulMatches += other.SuccessfulMatches
	s.StateFailures += other.StateFailures
	s.CityFailures += other.CityFailures
	s.StateExact += other.StateExact
	s.StateMultiple += other.StateMultiple
	s.StateNone += other.StateNone
	s.CityExact += other.CityExact
	s.CityMultiple += other.CityMultiple
	s.CityNone += other.CityNone
	s.EmptyCountryCodes += other.EmptyCountryCodes
	s.EmptyStateNames += other.EmptyStateNames
	s.EmptyCityNames += other.EmptyCityNames
	s.QueryCount += other.QueryCount
	for k := range other.FailedCountries {
		s.FailedCountries[k] = struct{}{}
	}
	for k := range other.FailedStates {
		s.FailedStates[k] = struct{}{}
	}
	for k := range other.FailedCities {
		s.FailedCities[k] = struct{}{}
	}
}

// Report is the derived, serializable run summary.
type Report struct {
	RunID   string        `json:"run_id"`
	Summary ReportSummary `json:"summary"`

	StateAnalysis TierAnalysis `json:"state_match_analysis"`
	CityAnalysis  TierAnalysis `json:"city_match_analysis"`

	DataQuality DataQuality `json:"data_quality_analysis"`
	Performance Performance `json:"performance_metrics"`

	Recommendations []string `json:"recommendations"`
}

type ReportSummary struct {
	TotalRecords      int     `json:"total_records"`
	SuccessfulMatches int     `json:"successful_matches"`
	SuccessRate       float64 `json:"success_rate"`
	StateFailures     int     `json:"state_failures"`
	StateFailureRate  float64 `json:"state_failure_rate"`
	CityFailures      int     `json:"city_failures"`
	CityFailureRate   float64 `json:"city_failure_rate"`
	ProcessingSeconds float64 `json:"processing_seconds"`
}

type TierAnalysis struct {
	ExactMatches    int      `json:"exact_matches"`
	MultipleMatches int      `json:"multiple_matches"`
	NoMatches       int      `json:"no_matches"`
	FailedKeysCount int      `json:"failed_keys_count"`
	TopFailedKeys   []string `json:"top_failed_keys"`
}

type DataQuality struct {
	EmptyCountryCodes int `json:"empty_country_codes"`
	EmptyStateNames   int `json:"empty_state_names"`
	EmptyCityNames    int `json:"empty_city_names"`
}

type Performance struct {
	QueryCount          int     `json:"database_query_count"`
	QueriesPerRecord    float64 `json:"queries_per_record"`
	AvgSecondsPerRecord float64 `json:"avg_seconds_per_record"`
}

const topFailedKeys = 10

// BuildReport derives the run report from merged stats.
func BuildReport(runID string, stats *Stats, elapsed time.Duration) Report {
	total := stats.TotalRecords
	rate := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return round2(float64(n) / float64(total) * 100)
	}

	report := Report{
		RunID: runID,
		Summary: ReportSummary{
			TotalRecords:      total,
			SuccessfulMatches: stats.SuccessfulMatches,
			SuccessRate:       rate(stats.SuccessfulMatches),
			StateFailures:     stats.StateFailures,
			StateFailureRate:  rate(stats.StateFailures),
			CityFailures:      stats.CityFailures,
			CityFailureRate:   rate(stats.CityFailures),
			ProcessingSeconds: round2(elapsed.Seconds()),
		},
		StateAnalysis: TierAnalysis{
			ExactMatches:    stats.StateExact,
			MultipleMatches: stats.StateMultiple,
			NoMatches:       stats.StateNone,
			FailedKeysCount: len(stats.FailedStates),
			TopFailedKeys:   topKeys(stats.FailedStates),
		},
		CityAnalysis: TierAnalysis{
			ExactMatches:    stats.CityExact,
			MultipleMatches: stats.CityMultiple,
			NoMatches:       stats.CityNone,
			FailedKeysCount: len(stats.FailedCities),
			TopFailedKeys:   topKeys(stats.FailedCities),
		},
		DataQuality: DataQuality{
			EmptyCountryCodes: stats.EmptyCountryCodes,
			EmptyStateNames:   stats.EmptyStateNames,
			EmptyCityNames:    stats.EmptyCityNames,
		},
		Performance: Performance{
			QueryCount: stats.QueryCount,
		},
	}
	if total > 0 {
		report.Performance.QueriesPerRecord = round2(float64(stats.QueryCount) / float64(total))
		report.Performance.AvgSecondsPerRecord = elapsed.Seconds() / float64(total)
	}
	report.Recommendations = recommendations(stats)
	return report
}

func recommendations(stats *Stats) []string {
	var recs []string
	total := stats.TotalRecords
	if total == 0 {
		return []string{"no records were processed"}
	}

	successRate := float64(stats.SuccessfulMatches) / float64(total) * 100
	switch {
	case successRate < 50:
		recs = append(recs, "low match rate: check input data quality and the column mapping configuration")
	case successRate < 80:
		recs = append(recs, "moderate match rate: cleaning the input data should improve results")
	}

	if stats.StateFailures > 0 {
		if len(stats.FailedCountries) > 5 {
			recs = append(recs, fmt.Sprintf("state matching failed across %d countries: verify the country codes", len(stats.FailedCountries)))
		}
		if float64(stats.StateNone) > float64(total)*0.2 {
			recs = append(recs, "over 20% of states did not match: check state name spelling and format")
		}
	}
	if stats.CityFailures > 0 && float64(stats.CityNone) > float64(total)*0.3 {
		recs = append(recs, "over 30% of cities did not match: check city name spelling and format")
	}

	if stats.EmptyCountryCodes > 0 {
		recs = append(recs, fmt.Sprintf("%d rows have an empty country code", stats.EmptyCountryCodes))
	}
	if stats.EmptyStateNames > 0 {
		recs = append(recs, fmt.Sprintf("%d rows have an empty state name", stats.EmptyStateNames))
	}
	if stats.EmptyCityNames > 0 {
		recs = append(recs, fmt.Sprintf("%d rows have an empty city name", stats.EmptyCityNames))
	}

	if float64(stats.QueryCount)/float64(total) > 3 {
		recs = append(recs, "high query count per record: consider caching repeated lookups")
	}

	if len(recs) == 0 {
		recs = append(recs, "data quality looks good; match results are reliable")
	}
	return recs
}

func topKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > topFailedKeys {
		keys = keys[:topFailedKeys]
	}
	return keys
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
