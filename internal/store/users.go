// internal/store/users.go
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// UserStore resolves user attributes the condition evaluator needs when they
// are not embedded in the event context.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// RoleByUserID returns "" when the user does not exist.
func (s *UserStore) RoleByUserID(ctx context.Context, userID string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx,
		`SELECT role FROM users WHERE id = $1`, userID).Scan(&role)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find user role: %w", err)
	}
	return role, nil
}
