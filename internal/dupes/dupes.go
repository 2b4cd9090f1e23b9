package dupes

import (
	"context"
	"log/slog"

	"georesolve/internal/logging"
	"georesolve/internal/store"
)

// Report holds duplicate alias groups for both index tables.
type Report struct {
	StateGroups []store.DuplicateGroup
	CityGroups  []store.DuplicateGroup
}

// TotalGroups is the number of contested alias keys across both tables.
func (r *Report) TotalGroups() int {
	return len(r.StateGroups) + len(r.CityGroups)
}

// Check scans both alias tables for keys mapping to more than one entity.
func Check(ctx context.Context, s *store.Store, logger *slog.Logger) (*Report, error) {
	log := logging.NewComponentLogger(logger, "dupes")

	stateGroups, err := s.DuplicateNameGroups(ctx, "state_names")
	if err != nil {
		return nil, err
	}
	cityGroups, err := s.DuplicateNameGroups(ctx, "city_names")
	if err != nil {
		return nil, err
	}

	report := &Report{StateGroups: stateGroups, CityGroups: cityGroups}
	log.Info("duplicate scan complete",
		logging.Int("state_groups", len(stateGroups)),
		logging.Int("city_groups", len(cityGroups)))
	return report, nil
}
