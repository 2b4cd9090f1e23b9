package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"georesolve/internal/alias"
	"georesolve/internal/catalog"
	"georesolve/internal/config"
	"georesolve/internal/export"
	"georesolve/internal/geonames"
	"georesolve/internal/hierarchy"
	"georesolve/internal/knowledge"
	"georesolve/internal/logging"
	"georesolve/internal/reconcile"
	"georesolve/internal/store"
)

func newBuildCommand(cctx *commandContext) *cobra.Command {
	var skipKnowledge bool
	var skipExport bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the place hierarchy database from the bulk catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			return runBuild(cmd, cfg, cctx.loggerValue(), skipKnowledge, skipExport)
		},
	}

	cmd.Flags().BoolVar(&skipKnowledge, "skip-knowledge", false, "Skip knowledge-base resolution for the secondary catalog")
	cmd.Flags().BoolVar(&skipExport, "skip-export", false, "Skip the CSV table export")
	return cmd
}

func runBuild(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, skipKnowledge, skipExport bool) error {
	ctx := cmd.Context()
	log := logging.NewComponentLogger(logger, "build")
	start := time.Now()

	// One build at a time per database.
	lock := flock.New(cfg.DatabasePath() + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire build lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another build is already running against %s", cfg.DatabasePath())
	}
	defer func() { _ = lock.Unlock() }()

	// Phase 1: parse the dump, classify, and collect alias inputs.
	parser := geonames.NewParser(cfg.Sources.PlacesFile, cfg.Sources.ChunkSize, logger)
	var stateRecords, cityRecords []geonames.Record
	internalAliases := make(map[int64][]string)
	err = parser.Chunks(func(records []geonames.Record) error {
		for _, r := range records {
			if geonames.IsStateLevel(r) {
				stateRecords = append(stateRecords, r)
			} else {
				cityRecords = append(cityRecords, r)
			}
			internalAliases[r.GeonameID] = alias.Normalize(r.NameInputs())
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info("dump parsed",
		logging.Int("state_records", len(stateRecords)),
		logging.Int("city_records", len(cityRecords)),
		logging.Int("skipped_rows", parser.Skipped()))

	states := hierarchy.BuildStates(stateRecords, logger)
	cities := hierarchy.BuildCities(cityRecords, logger)

	// Phase 2: secondary catalog, knowledge base, reconciliation.
	externalAliases := make(map[int64][]string)
	var reconcileStats reconcile.Stats
	if cfg.Sources.CatalogEnabled {
		externalAliases, reconcileStats, err = buildExternalAliases(ctx, cfg, logger, parser, states, cities, stateRecords, cityRecords, skipKnowledge)
		if err != nil {
			return err
		}
	}

	// Phase 3: alias index rows.
	stateNames := hierarchy.BuildStateNames(states, internalAliases, externalAliases)
	cityNames := hierarchy.BuildCityNames(cities, states, internalAliases, externalAliases, logger)

	// Phase 4: persist.
	s, err := store.Open(ctx, cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.Reset(ctx); err != nil {
		return err
	}
	if err := s.InsertStates(ctx, states); err != nil {
		return err
	}
	if err := s.InsertCities(ctx, cities); err != nil {
		return err
	}
	if err := s.AppendStateNames(ctx, stateNames); err != nil {
		return err
	}
	if err := s.AppendCityNames(ctx, cityNames); err != nil {
		return err
	}

	counts, err := s.TableCounts(ctx)
	if err != nil {
		return err
	}

	if !skipExport {
		if _, err := export.Tables(ctx, s, filepath.Join(cfg.Paths.OutputDir, "export"), logger); err != nil {
			return err
		}
	}

	log.Info("build complete",
		logging.Duration("elapsed", time.Since(start)),
		logging.String("database", cfg.DatabasePath()))

	rows := [][]string{
		{"states", strconv.FormatInt(counts.States, 10)},
		{"cities", strconv.FormatInt(counts.Cities, 10)},
		{"state aliases", strconv.FormatInt(counts.StateNames, 10)},
		{"city aliases", strconv.FormatInt(counts.CityNames, 10)},
		{"skipped dump rows", strconv.Itoa(parser.Skipped())},
	}
	if cfg.Sources.CatalogEnabled {
		rows = append(rows,
			[]string{"catalog pairs reconciled", strconv.Itoa(reconcileStats.AlreadyCorrect + reconcileStats.Corrected)},
			[]string{"catalog pairs rejected", strconv.Itoa(reconcileStats.Failed)},
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Table", "Rows"}, rows))
	fmt.Fprintf(cmd.OutOrStdout(), "Database written to %s\n", cfg.DatabasePath())
	return nil
}

// buildExternalAliases runs the catalog half of the build: read the secondary
// catalog, resolve its refs through the knowledge base (unless skipped),
// reconcile the resolved ids, and expand the surviving names into aliases.
func buildExternalAliases(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	parser *geonames.Parser,
	states, cities []geonames.Record,
	stateRecords, cityRecords []geonames.Record,
	skipKnowledge bool,
) (map[int64][]string, reconcile.Stats, error) {
	log := logging.NewComponentLogger(logger, "build")

	candidates, err := catalog.Read(cfg.Sources.CatalogFile, logger)
	if err != nil {
		return nil, reconcile.Stats{}, err
	}
	refs := catalog.ExternalRefs(candidates)
	if skipKnowledge || len(refs) == 0 {
		log.Info("knowledge-base resolution skipped", logging.Int("refs", len(refs)))
		return make(map[int64][]string), reconcile.Stats{}, nil
	}

	client := knowledge.NewClient(
		cfg.KnowledgeBase.Endpoint,
		cfg.KnowledgeBase.BatchSize,
		time.Duration(cfg.KnowledgeBase.TimeoutSeconds)*time.Second,
		logger,
	)
	resolver := knowledge.NewCachedResolver(
		cfg.KnowledgeBase.CachePath,
		time.Duration(cfg.KnowledgeBase.CacheTTLDays)*24*time.Hour,
		client,
		logger,
	)
	resolved, err := resolver.ResolveBatch(ctx, refs)
	if err != nil {
		// Partial results are still usable; the build carries on.
		log.Warn("knowledge-base resolution incomplete",
			logging.Int("resolved", len(resolved)),
			logging.Error(err))
	}
	if err := resolver.Save(); err != nil {
		log.Warn("could not persist knowledge cache", logging.Error(err))
	}
	if len(resolved) == 0 {
		return make(map[int64][]string), reconcile.Stats{}, nil
	}

	originals := originalRecords(parser, stateRecords, cityRecords, resolved, log)
	rec := reconcile.New(states, cities, originals, catalog.ByRef(candidates), logger)
	corrected, stats := rec.Reconcile(resolved)
	return catalog.ExternalAliases(candidates, corrected), stats, nil
}

// originalRecords indexes the parsed dump by id for the reconciler. Ids the
// in-memory pass never saw (malformed rows, for instance) get one extra
// targeted scan of the dump.
func originalRecords(parser *geonames.Parser, stateRecords, cityRecords []geonames.Record, resolved map[string]int64, log *slog.Logger) map[int64]geonames.Record {
	originals := make(map[int64]geonames.Record, len(stateRecords)+len(cityRecords))
	for _, r := range stateRecords {
		if _, dup := originals[r.GeonameID]; !dup {
			originals[r.GeonameID] = r
		}
	}
	for _, r := range cityRecords {
		if _, dup := originals[r.GeonameID]; !dup {
			originals[r.GeonameID] = r
		}
	}

	missing := make(map[int64]struct{})
	for _, id := range resolved {
		if _, ok := originals[id]; !ok {
			missing[id] = struct{}{}
		}
	}
	if len(missing) == 0 {
		return originals
	}

	found, err := parser.LookupIDs(missing)
	if err != nil {
		log.Warn("could not rescan dump for candidate records",
			logging.Int("missing", len(missing)),
			logging.Error(err))
		return originals
	}
	for id, record := range found {
		originals[id] = record
	}
	return originals
}
