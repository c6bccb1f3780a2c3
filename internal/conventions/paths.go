package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default progtree data directory name (relative to home).
	DefaultDataDir = ".progtree"
	// DBFile is the filename of the run database.
	DBFile = "progtree.db"
	// PlansDir is the subdirectory where users can keep their plans.
	PlansDir = "plans"

	// EnvDBPath overrides the run database path.
	EnvDBPath = "PROGTREE_DB_PATH"
)

// DBPath returns the path of the run database inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// PlanPath returns the path of a named plan inside a data directory. Names
// without extension get the YAML one.
func PlanPath(dataDir, name string) string {
	if filepath.Ext(name) == "" {
		name += ".yaml"
	}
	return filepath.Join(dataDir, PlansDir, name)
}
