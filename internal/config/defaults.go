package config

const (
	defaultOutputDir        = "~/.local/share/georesolve"
	defaultPlacesFile       = "source_data/geonames/allCountries.txt"
	defaultChunkSize        = 10000
	defaultCountryColumn    = "country_code"
	defaultStateColumn      = "state_name"
	defaultCityColumn       = "city_name"
	defaultMatchWorkers     = 5
	defaultKBEndpoint       = "https://query.wikidata.org/sparql"
	defaultKBBatchSize      = 50
	defaultKBCacheTTLDays   = 30
	defaultKBTimeoutSeconds = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
		},
		Sources: Sources{
			PlacesFile: defaultPlacesFile,
			ChunkSize:  defaultChunkSize,
		},
		Matching: Matching{
			CountryColumn: defaultCountryColumn,
			StateColumn:   defaultStateColumn,
			CityColumn:    defaultCityColumn,
			Workers:       defaultMatchWorkers,
		},
		KnowledgeBase: KnowledgeBase{
			Endpoint:       defaultKBEndpoint,
			BatchSize:      defaultKBBatchSize,
			CacheTTLDays:   defaultKBCacheTTLDays,
			TimeoutSeconds: defaultKBTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
