package config

const (
	// DefaultBaseURL is the demo application the shipped scenarios target.
	DefaultBaseURL = "https://demoqa.com"
	// DefaultArtifactDir is where failure screenshots are written.
	DefaultArtifactDir = "screenshots"
	// DefaultArtifactMaxBytes caps the artifact directory (512 MiB).
	DefaultArtifactMaxBytes int64 = 512 << 20
	// DefaultLanes is the number of concurrent browser pages.
	DefaultLanes = 4
	// DefaultScenarioFile is the run configuration used when --config is not given.
	DefaultScenarioFile = "scenarios/demoqa.yaml"
	// ResultsTable is the ClickHouse table scenario results are exported to.
	ResultsTable = "scenario_results"
	// SchemaMigrationsTable tracks applied result store migrations.
	SchemaMigrationsTable = "schema_migrations_uimatrix"
)
