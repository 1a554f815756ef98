package appuser

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gatehouse/pkg/platform/sentinel"
)

const pqUniqueViolation = "23505"

// PostgresStore persists staff accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed user store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user User) (int64, error) {
	now := time.Now()
	query := `
		INSERT INTO app_users (username, credential, display_name, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`
	var id int64
	err := s.db.QueryRowContext(ctx, query,
		user.Username, user.Credential, user.DisplayName, string(user.Role), user.Active, now).Scan(&id)
	if isUniqueViolation(err) {
		return 0, sentinel.ErrConflict
	}
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, username, credential, display_name, role, active, created_at, updated_at
		FROM app_users
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (User, error) {
	query := `
		SELECT id, username, credential, display_name, role, active, created_at, updated_at
		FROM app_users
		WHERE id = $1
	`
	return s.findOne(ctx, query, id)
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (User, error) {
	query := `
		SELECT id, username, credential, display_name, role, active, created_at, updated_at
		FROM app_users
		WHERE username = $1
	`
	return s.findOne(ctx, query, username)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (User, error) {
	row := s.db.QueryRowContext(ctx, query, arg)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, sentinel.ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Update merges the patch into the stored row and writes it back as a whole.
func (s *PostgresStore) Update(ctx context.Context, id int64, patch Patch) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	patch.Apply(&user)
	query := `
		UPDATE app_users
		SET username = $2, credential = $3, display_name = $4, role = $5, active = $6, updated_at = $7
		WHERE id = $1
	`
	_, err = s.db.ExecContext(ctx, query,
		id, user.Username, user.Credential, user.DisplayName, string(user.Role), user.Active, time.Now())
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM app_users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var role string
	if err := row.Scan(&user.ID, &user.Username, &user.Credential, &user.DisplayName,
		&role, &user.Active, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, err
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	user.Role = Role(role)
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
