package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"swap_store/internal/pkg/apperr"
	"swap_store/internal/pkg/logger"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pointsCheckConstraint = "users_points_check"
	onePendingIndex       = "swap_requests_one_pending_idx"
)

// PostgreSQL implements the Storage interface using a PostgreSQL database.
type PostgreSQL struct {
	db      *sql.DB        // Connection to the database.
	log     *logger.Logger // Logger for recording events and errors.
	typeMap *pgtype.Map    // Decodes array columns.
}

// NewPostgreSQL creates a new PostgreSQL instance with the provided connection string and logger.
// It opens the connection, pings the database and creates the schema when it is missing.
func NewPostgreSQL(configDBString string, l *logger.Logger) (*PostgreSQL, error) {
	postgresql := &PostgreSQL{log: l, typeMap: pgtype.NewMap()}

	db, err := sql.Open("pgx", configDBString)
	if err != nil {
		l.Sugar().Errorf("Failed to open a database: %s", err)
		return postgresql, err
	}
	postgresql.db = db

	const defaultTimeout = 10 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		l.Sugar().Errorf("Database ping failed: %s", err)
		return postgresql, err
	}

	if err := postgresql.EnsureSchema(ctx); err != nil {
		return postgresql, err
	}

	return postgresql, nil
}

// EnsureSchema creates the tables and indexes used by the store if they do not exist.
func (postgresql *PostgreSQL) EnsureSchema(ctx context.Context) error {
	if _, err := postgresql.db.ExecContext(ctx, schema); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query schema: %s", err)
		return err
	}
	return nil
}

// Close closes the database connection if it is open.
func (postgresql *PostgreSQL) Close() {
	if postgresql.db != nil {
		postgresql.db.Close()
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// classify translates database errors into the error taxonomy. notFound is the message
// used when the statement matched no row.
func classify(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("%s", notFound)
	}

	var pgError *pgconn.PgError
	if !errors.As(err, &pgError) {
		return err
	}
	switch pgError.Code {
	case pgerrcode.CheckViolation:
		if pgError.ConstraintName == pointsCheckConstraint {
			return apperr.InsufficientPoints("Insufficient points")
		}
		return apperr.Validation("%s", pgError.Message)
	case pgerrcode.UniqueViolation:
		if pgError.ConstraintName == onePendingIndex {
			return apperr.Conflict("You already have a pending request for this item")
		}
		return apperr.Conflict("record already exists")
	case pgerrcode.ForeignKeyViolation:
		return apperr.NotFound("%s", notFound)
	case pgerrcode.DeadlockDetected, pgerrcode.SerializationFailure, pgerrcode.LockNotAvailable:
		return apperr.Conflict("The record was modified concurrently, please retry")
	}
	return err
}

// commit commits tx and classifies a failure.
func (postgresql *PostgreSQL) commit(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		postgresql.log.Sugar().Errorf("Failed to commit a transaction: %s", err)
		return classify(err, "record not found")
	}
	return nil
}

// execOne runs a statement expected to change exactly one row. A statement that matches no
// row fails with a ConflictError carrying conflict.
func (postgresql *PostgreSQL) execOne(ctx context.Context, tx *sql.Tx, name, query, conflict string, args ...any) error {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query %s: %s", name, err)
		return classify(err, "record not found")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute RowsAffected in %s: %s", name, err)
		return err
	}
	if rows == 0 {
		return apperr.Conflict("%s", conflict)
	}
	return nil
}

func toStrings[T ~string](values []T) []string {
	strs := make([]string, len(values))
	for i, value := range values {
		strs[i] = string(value)
	}
	return strs
}
