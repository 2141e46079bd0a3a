package turso

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/bayesab/internal/migrate"
	"github.com/emiliopalmerini/bayesab/internal/util"
)

const dbFileName = "bayesab.db"

// DB wraps the libsql connection used for saved readouts.
type DB struct {
	*sql.DB
}

// NewDB opens the database at url, or the local file under the XDG data
// directory when url is empty, and applies pending migrations.
func NewDB(ctx context.Context, url, authToken string) (*DB, error) {
	db, err := Open(ctx, url, authToken)
	if err != nil {
		return nil, err
	}

	if err := migrate.RunAll(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "turso: run migrations")
	}

	return db, nil
}

// Open is NewDB without running migrations.
func Open(ctx context.Context, url, authToken string) (*DB, error) {
	dsn, err := resolveDSN(url, authToken)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "turso: open database")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "turso: ping database")
	}

	return &DB{DB: db}, nil
}

func resolveDSN(url, authToken string) (string, error) {
	if url == "" {
		path, err := util.DataFile(dbFileName)
		if err != nil {
			return "", eris.Wrap(err, "turso: resolve database file")
		}
		return "file:" + path, nil
	}
	if authToken == "" {
		return url, nil
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "authToken=" + authToken, nil
}
