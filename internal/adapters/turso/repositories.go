package turso

import (
	"database/sql"

	"github.com/emiliopalmerini/bayesab/internal/ports"
)

// Repositories holds all turso repository implementations as port interfaces.
type Repositories struct {
	Readouts ports.ReadoutRepository
}

// NewRepositories creates all turso repository implementations from a database connection.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Readouts: NewReadoutRepository(db),
	}
}
