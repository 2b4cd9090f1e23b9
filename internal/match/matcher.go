package match

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"georesolve/internal/logging"
	"georesolve/internal/store"
)

// Matcher runs triple resolution against a read-only store.
type Matcher struct {
	store  *store.Store
	logger *slog.Logger
}

// New binds a matcher to the store.
func New(st *store.Store, logger *slog.Logger) *Matcher {
	return &Matcher{
		store:  st,
		logger: logging.NewComponentLogger(logger, "match"),
	}
}

// worker owns one prepared-statement session and a private accumulator.
type worker struct {
	session *store.MatchSession
	stats   *Stats
	logger  *slog.Logger
}

func (m *Matcher) newWorker(ctx context.Context) (*worker, error) {
	session, err := m.store.NewMatchSession(ctx)
	if err != nil {
		return nil, err
	}
	return &worker{session: session, stats: NewStats(), logger: m.logger}, nil
}

func (w *worker) close() {
	_ = w.session.Close()
}

// MatchTriple resolves a single triple outside of a batch, returning the
// stats the row generated.
func (m *Matcher) MatchTriple(ctx context.Context, row Row) (Result, *Stats, error) {
	w, err := m.newWorker(ctx)
	if err != nil {
		return Result{}, nil, err
	}
	defer w.close()
	result := w.matchTriple(ctx, 0, row)
	return result, w.stats, nil
}

func (w *worker) matchTriple(ctx context.Context, index int, row Row) Result {
	result := Result{
		Index:  index,
		Row:    row,
		Status: StatusFailed,
	}
	w.stats.TotalRecords++

	countryCode := strings.TrimSpace(row.CountryCode)
	stateName := strings.TrimSpace(row.StateName)
	cityName := strings.TrimSpace(row.CityName)

	if countryCode == "" {
		w.stats.EmptyCountryCodes++
		result.FailureReason = ReasonEmptyField
		result.Suggestion = "row has no country code"
		return result
	}
	if cityName == "" {
		w.stats.EmptyCityNames++
		result.FailureReason = ReasonEmptyField
		result.Suggestion = "row has no city name"
		return result
	}

	// State resolution is advisory: a miss narrows nothing but fails nothing.
	state, err := w.matchState(ctx, countryCode, stateName)
	if err != nil {
		return w.rowError(result, err)
	}
	if state != nil {
		result.StateGeonameID = state.GeonameID
		result.StateAdmin1Code = state.Admin1Code
	}

	cityID, err := w.matchCity(ctx, countryCode, state, cityName)
	if err != nil {
		return w.rowError(result, err)
	}
	if cityID == 0 {
		w.stats.CityFailures++
		result.FailureReason = ReasonCityNotFound
		result.Suggestion = citySuggestion(countryCode, stateName, state)
		return result
	}

	result.CityGeonameID = cityID
	result.Status = StatusSuccess
	result.FailureReason = ""
	w.stats.SuccessfulMatches++
	return result
}

func (w *worker) matchState(ctx context.Context, countryCode, stateName string) (*StateMatch, error) {
	if stateName == "" {
		w.stats.EmptyStateNames++
		return nil, nil
	}

	w.stats.QueryCount++
	candidates, err := w.session.MatchStates(ctx, countryCode, stateName)
	if err != nil {
		return nil, fmt.Errorf("state lookup %s/%s: %w", countryCode, stateName, err)
	}
	if len(candidates) == 0 {
		w.stats.StateNone++
		w.stats.StateFailures++
		w.stats.FailedCountries[countryCode] = struct{}{}
		w.stats.FailedStates[countryCode+":"+stateName] = struct{}{}
		return nil, nil
	}

	if len(candidates) == 1 {
		w.stats.StateExact++
	} else {
		w.stats.StateMultiple++
		w.logger.Debug("alias matches multiple states, picking by population",
			logging.String("country", countryCode),
			logging.String("state", stateName),
			logging.Int64("geonameid", candidates[0].GeonameID))
	}
	return &StateMatch{
		GeonameID:  candidates[0].GeonameID,
		Admin1Code: candidates[0].Admin1Code,
	}, nil
}

func (w *worker) matchCity(ctx context.Context, countryCode string, state *StateMatch, cityName string) (int64, error) {
	var candidates []store.Candidate
	var err error

	// Tier 1: admin1-scoped when a state resolved. The state-id tier
	// (MatchCitiesInState) exists as an alternate but the admin1 code is what
	// the source data keys cities by, so it wins here.
	if state != nil {
		w.stats.QueryCount++
		candidates, err = w.session.MatchCitiesInAdmin1(ctx, countryCode, state.Admin1Code, cityName)
		if err != nil {
			return 0, fmt.Errorf("city lookup %s/%s/%s: %w", countryCode, state.Admin1Code, cityName, err)
		}
	}

	// Country-wide fallback, also the primary path when no state resolved.
	if len(candidates) == 0 {
		w.stats.QueryCount++
		candidates, err = w.session.MatchCitiesInCountry(ctx, countryCode, cityName)
		if err != nil {
			return 0, fmt.Errorf("city lookup %s/%s: %w", countryCode, cityName, err)
		}
	}

	if len(candidates) == 0 {
		w.stats.CityNone++
		key := cityName
		if state != nil {
			key = fmt.Sprintf("%d:%s", state.GeonameID, cityName)
		}
		w.stats.FailedCities[key] = struct{}{}
		return 0, nil
	}

	if len(candidates) == 1 {
		w.stats.CityExact++
	} else {
		w.stats.CityMultiple++
		w.logger.Debug("alias matches multiple cities, picking by population",
			logging.String("country", countryCode),
			logging.String("city", cityName),
			logging.Int64("geonameid", candidates[0].GeonameID))
	}
	return candidates[0].GeonameID, nil
}

// MatchCityByState is the state-id variant of tier 1, kept callable for
// callers that carry state ids instead of admin codes.
func (m *Matcher) MatchCityByState(ctx context.Context, countryCode string, stateGeonameID int64, cityName string) (int64, error) {
	session, err := m.store.NewMatchSession(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = session.Close() }()

	candidates, err := session.MatchCitiesInState(ctx, countryCode, stateGeonameID, cityName)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, nil
	}
	return candidates[0].GeonameID, nil
}

func (w *worker) rowError(result Result, err error) Result {
	w.logger.Error("row failed",
		logging.String("country", result.Row.CountryCode),
		logging.String("city", result.Row.CityName),
		logging.Error(err))
	w.stats.CityFailures++
	result.Status = StatusFailed
	result.FailureReason = ReasonCityNotFound
	result.Suggestion = "internal lookup error: " + err.Error()
	return result
}

func citySuggestion(countryCode, stateName string, state *StateMatch) string {
	if state != nil {
		return fmt.Sprintf("check the city name spelling, or confirm the city exists in state %d", state.GeonameID)
	}
	if stateName != "" {
		return fmt.Sprintf("state %q did not resolve in %s; check both the state and city names", stateName, countryCode)
	}
	return "check the city name spelling and the country code"
}
