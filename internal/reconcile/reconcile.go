package reconcile

import (
	"log/slog"
	"math"

	"georesolve/internal/catalog"
	"georesolve/internal/geonames"
	"georesolve/internal/logging"
)

// maxCoordinateDelta is the tolerated per-axis difference, in degrees,
// between a candidate's raw record and any catalog row sharing its ref.
const maxCoordinateDelta = 10.0

// Stats counts reconciliation outcomes.
type Stats struct {
	Total          int
	AlreadyCorrect int
	Corrected      int
	Failed         int
}

// Reconciler holds the lookup tables for one reconciliation pass.
type Reconciler struct {
	knownIDs     map[int64]struct{}
	cityByAdmin  map[adminKey]int64
	stateByAdmin map[adminKey]int64
	originals    map[int64]geonames.Record
	catalogByRef map[string][]catalog.Candidate
	logger       *slog.Logger
}

type adminKey struct {
	country string
	admin1  string
	admin2  string
}

// New builds a reconciler over the hierarchy tables, the raw records indexed
// by id, and the catalog rows indexed by external ref. Admin lookups keep the
// first entity per key.
func New(states, cities []geonames.Record, originals map[int64]geonames.Record, catalogByRef map[string][]catalog.Candidate, logger *slog.Logger) *Reconciler {
	r := &Reconciler{
		knownIDs:     make(map[int64]struct{}, len(states)+len(cities)),
		cityByAdmin:  make(map[adminKey]int64, len(cities)),
		stateByAdmin: make(map[adminKey]int64, len(states)),
		originals:    originals,
		catalogByRef: catalogByRef,
		logger:       logging.NewComponentLogger(logger, "reconcile"),
	}
	for _, state := range states {
		r.knownIDs[state.GeonameID] = struct{}{}
		key := adminKey{country: state.CountryCode, admin1: state.Admin1Code}
		if _, exists := r.stateByAdmin[key]; !exists {
			r.stateByAdmin[key] = state.GeonameID
		}
	}
	for _, city := range cities {
		r.knownIDs[city.GeonameID] = struct{}{}
		key := adminKey{country: city.CountryCode, admin1: city.Admin1Code, admin2: city.Admin2Code}
		if _, exists := r.cityByAdmin[key]; !exists {
			r.cityByAdmin[key] = city.GeonameID
		}
	}
	return r
}

// Reconcile corrects the (externalRef -> candidateId) mapping. Failed pairs
// are absent from the returned map.
func (r *Reconciler) Reconcile(resolved map[string]int64) (map[string]int64, Stats) {
	corrected := make(map[string]int64, len(resolved))
	stats := Stats{Total: len(resolved)}

	for ref, candidateID := range resolved {
		id, outcome := r.reconcileOne(ref, candidateID)
		switch outcome {
		case outcomeAlreadyCorrect:
			stats.AlreadyCorrect++
			corrected[ref] = id
		case outcomeCorrected:
			stats.Corrected++
			corrected[ref] = id
		case outcomeFailed:
			stats.Failed++
		}
	}

	r.logger.Info("reconciliation complete",
		logging.Int("total", stats.Total),
		logging.Int("already_correct", stats.AlreadyCorrect),
		logging.Int("corrected", stats.Corrected),
		logging.Int("failed", stats.Failed))
	return corrected, stats
}

type outcome int

const (
	outcomeAlreadyCorrect outcome = iota
	outcomeCorrected
	outcomeFailed
)

func (r *Reconciler) reconcileOne(ref string, candidateID int64) (int64, outcome) {
	original, hasOriginal := r.originals[candidateID]

	// The sanity check overrides every acceptance path, so run it first.
	if hasOriginal && !r.coordinatesPlausible(ref, original) {
		r.logger.Warn("candidate rejected by coordinate check",
			logging.String("ref", ref),
			logging.Int64("geonameid", candidateID))
		return 0, outcomeFailed
	}

	if _, known := r.knownIDs[candidateID]; known {
		return candidateID, outcomeAlreadyCorrect
	}

	if !hasOriginal {
		r.logger.Debug("no raw record for candidate",
			logging.String("ref", ref),
			logging.Int64("geonameid", candidateID))
		return 0, outcomeFailed
	}
	if original.CountryCode == "" {
		return 0, outcomeFailed
	}

	if id, ok := r.cityByAdmin[adminKey{
		country: original.CountryCode,
		admin1:  original.Admin1Code,
		admin2:  original.Admin2Code,
	}]; ok {
		return id, outcomeCorrected
	}
	if id, ok := r.stateByAdmin[adminKey{
		country: original.CountryCode,
		admin1:  original.Admin1Code,
	}]; ok {
		return id, outcomeCorrected
	}

	r.logger.Debug("no admin-code correction found",
		logging.String("ref", ref),
		logging.Int64("geonameid", candidateID),
		logging.String("country", original.CountryCode),
		logging.String("admin1", original.Admin1Code))
	return 0, outcomeFailed
}

func (r *Reconciler) coordinatesPlausible(ref string, original geonames.Record) bool {
	for _, row := range r.catalogByRef[ref] {
		if !row.HasCoords {
			continue
		}
		if math.Abs(row.Latitude-original.Latitude) > maxCoordinateDelta ||
			math.Abs(row.Longitude-original.Longitude) > maxCoordinateDelta {
			return false
		}
	}
	return true
}
