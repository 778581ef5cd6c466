package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const userColumns = "id, name, email, password_hash, role, phone, address, age, height_cm, weight_kg, sex, training_location, license_id, created_at, updated_at"

// UserStore implements repository.UserRepository.
type UserStore struct {
	db SQLDB
}

var _ repository.UserRepository = (*UserStore)(nil)

// NewUserStore creates a new UserStore.
func NewUserStore(db SQLDB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts user and assigns its ID.
// PRE: email, password hash and role are set
// POST: returns repository.ErrDuplicate when the email is taken
func (s *UserStore) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID.Hex(), user.Name, user.Email, user.PasswordHash, string(user.Role),
		user.Phone, user.Address, nullInt(user.Age), nullFloat(user.HeightCm), nullFloat(user.WeightKg),
		string(user.Sex), user.TrainingLocation, user.LicenseID,
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUserRow(row)
}

func (s *UserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id.Hex())
	return scanUserRow(row)
}

func (s *UserStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	in, args := inClause(ids)
	return s.query(ctx, "SELECT "+userColumns+" FROM users WHERE id IN ("+in+") ORDER BY name, rowid", args...)
}

// UpdateProfile writes the profile columns only.
// POST: returns repository.ErrNotFound when no row matched
func (s *UserStore) UpdateProfile(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `UPDATE users SET
		name = ?, phone = ?, address = ?, age = ?, height_cm = ?, weight_kg = ?,
		sex = ?, training_location = ?, license_id = ?, updated_at = ?
		WHERE id = ?`,
		user.Name, user.Phone, user.Address, nullInt(user.Age), nullFloat(user.HeightCm), nullFloat(user.WeightKg),
		string(user.Sex), user.TrainingLocation, user.LicenseID, formatTime(user.UpdatedAt),
		user.ID.Hex(),
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Search matches name or email with LIKE after Unicode case folding both sides.
func (s *UserStore) Search(ctx context.Context, query string, role domain.Role, limit int) ([]domain.User, error) {
	pattern := "%" + escapeLike(fold(query)) + "%"
	return s.query(ctx, "SELECT "+userColumns+` FROM users
		WHERE role = ? AND (`+foldFunc+`(name) LIKE ? ESCAPE '\' OR `+foldFunc+`(email) LIKE ? ESCAPE '\')
		ORDER BY name, rowid LIMIT ?`,
		string(role), pattern, pattern, limit)
}

func (s *UserStore) query(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func scanUserRow(row *sql.Row) (*domain.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return u, err
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u                  domain.User
		id, role, sex      string
		created, updated   string
		age                sql.NullInt64
		heightCm, weightKg sql.NullFloat64
	)
	err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Phone, &u.Address,
		&age, &heightCm, &weightKg, &sex, &u.TrainingLocation, &u.LicenseID, &created, &updated)
	if err != nil {
		return nil, err
	}
	if u.ID, err = parseID(id); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.Sex = domain.Sex(sex)
	if age.Valid {
		v := int(age.Int64)
		u.Age = &v
	}
	if heightCm.Valid {
		u.HeightCm = &heightCm.Float64
	}
	if weightKg.Valid {
		u.WeightKg = &weightKg.Float64
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &u, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
