package doctor

import (
	"context"
	"fmt"
)

// Pinger is the subset of the database used by DatabaseCheck.
type Pinger interface {
	Ping(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
}

// DatabaseCheck verifies the SQLite store is reachable and migrated.
type DatabaseCheck struct {
	db Pinger
}

// NewDatabaseCheck creates a new database check.
func NewDatabaseCheck(db Pinger) *DatabaseCheck {
	return &DatabaseCheck{db: db}
}

func (c *DatabaseCheck) Name() string {
	return "Database"
}

func (c *DatabaseCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if err := c.db.Ping(ctx); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "connection",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}
	result.Items = append(result.Items, CheckItem{Label: "connection", Status: StatusPass})

	version, err := c.db.SchemaVersion(ctx)
	switch {
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "schema",
			Status: StatusFail,
			Detail: err.Error(),
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "schema",
			Status: StatusPass,
			Detail: fmt.Sprintf("version %d", version),
		})
	}

	return result
}
