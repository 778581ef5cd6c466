// Package sqlite implements the repository ports on SQLite for single-node
// deployments. IDs are stored as ObjectID hex strings and timestamps as
// fixed-width UTC text so that string comparison orders them correctly.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"modernc.org/sqlite"
)

// foldFunc is the SQL name of the Unicode case fold; the built-in lower()
// only folds ASCII.
const foldFunc = "fold"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(foldFunc, 1, sqlFold); err != nil {
		panic(fmt.Sprintf("register %s: %v", foldFunc, err))
	}
}

// fold normalises s to NFC and applies full Unicode case folding.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

func sqlFold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return fold(v), nil
	case []byte:
		return fold(string(v)), nil
	default:
		return v, nil
	}
}

// SQLDB is the subset of *sql.DB the stores use.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ SQLDB = (*sql.DB)(nil)

const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Open opens the database at path with WAL, a busy timeout and foreign keys
// enabled, then creates the schema.
func Open(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := InitDB(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitDB creates the schema.
// PRE: db is a valid database connection
// POST: all tables and indexes exist
func InitDB(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		age INTEGER,
		height_cm REAL,
		weight_kg REAL,
		sex TEXT NOT NULL DEFAULT '',
		training_location TEXT NOT NULL DEFAULT '',
		license_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_role_name ON users(role, name);

	CREATE TABLE IF NOT EXISTS trainer_student_links (
		trainer_id TEXT NOT NULL REFERENCES users(id),
		student_id TEXT NOT NULL REFERENCES users(id),
		created_at TEXT NOT NULL,
		PRIMARY KEY (trainer_id, student_id)
	);
	CREATE INDEX IF NOT EXISTS idx_links_student ON trainer_student_links(student_id);

	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL REFERENCES users(id),
		date TEXT NOT NULL,
		weight_kg REAL NOT NULL,
		height_cm REAL NOT NULL,
		chest_mm REAL NOT NULL,
		abdominal_mm REAL NOT NULL,
		thigh_mm REAL NOT NULL,
		tricep_mm REAL NOT NULL,
		subscapular_mm REAL NOT NULL,
		suprailiac_mm REAL NOT NULL,
		midaxillary_mm REAL NOT NULL,
		age_years INTEGER NOT NULL,
		sex TEXT NOT NULL,
		body_density REAL NOT NULL,
		body_fat_percentage REAL NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assessments_student_date ON assessments(student_id, date);

	CREATE TABLE IF NOT EXISTS workout_plans (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		weekday INTEGER,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_workout_plans_student_weekday ON workout_plans(student_id, weekday);

	CREATE TABLE IF NOT EXISTS workout_logs (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL REFERENCES users(id),
		workout_id TEXT NOT NULL,
		completed_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_workout_logs_student_completed ON workout_logs(student_id, completed_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}

func parseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to parse stored id %q: %w", s, err)
	}
	return id, nil
}

// inClause returns "?,?,?" and the hex ids as arguments.
func inClause(ids []primitive.ObjectID) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.Hex()
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
