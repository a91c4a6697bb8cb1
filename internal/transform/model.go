package transform

// Materialization determines how a model is persisted in the warehouse.
type Materialization string

const (
	// View recomputes on every read.
	View Materialization = "view"
	// Table is fully rebuilt on every run.
	Table Materialization = "table"
)

// Model is a single declarative transformation. Its SQL is a SELECT statement;
// the runner wraps it into the DDL matching the materialization.
type Model struct {
	Name            string
	Schema          string
	Materialization Materialization
	// Refs lists upstream model names. Raw-zone tables are sources, not refs.
	Refs []string
	SQL  string
}

// Relation returns the schema-qualified relation name.
func (m Model) Relation() string {
	return m.Schema + "." + m.Name
}

// Check is a data-quality assertion. Its SQL selects violating rows; any
// returned row fails the check.
type Check struct {
	Name string
	SQL  string
}
