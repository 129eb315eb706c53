package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"eisenhower-tasks-backend/internal/db"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Nickname     string    `json:"nickname"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	PasswordHash string    `json:"-"`
}

// UserSummary is a row of the admin user listing.
type UserSummary struct {
	ID        int64  `json:"id"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	TaskCount int    `json:"task_count"`
}

// Users is the SQL-backed user store.
type Users struct {
	DB *db.DB
}

func NewUsers(dbx *db.DB) *Users {
	return &Users{DB: dbx}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create hashes password and inserts a regular user.
func (u *Users) Create(ctx context.Context, email, nickname, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Email:        normalizeEmail(email),
		Nickname:     strings.TrimSpace(nickname),
		Role:         RoleUser,
		CreatedAt:    time.Now().UTC(),
		PasswordHash: string(hash),
	}

	err = u.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, nickname, password, role, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, user.Email, user.Nickname, user.PasswordHash, string(user.Role), user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user when email and password match.
func (u *Users) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := u.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (u *Users) ByEmail(ctx context.Context, email string) (*User, error) {
	return u.scanOne(u.DB.QueryRowContext(ctx, `
		SELECT id, email, nickname, password, role, created_at
		FROM users WHERE email = ?
	`, normalizeEmail(email)))
}

func (u *Users) ByID(ctx context.Context, id int64) (*User, error) {
	return u.scanOne(u.DB.QueryRowContext(ctx, `
		SELECT id, email, nickname, password, role, created_at
		FROM users WHERE id = ?
	`, id))
}

func (u *Users) scanOne(row *sql.Row) (*User, error) {
	var user User
	var role string
	err := row.Scan(&user.ID, &user.Email, &user.Nickname, &user.PasswordHash, &role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Role = Role(role)
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}

func (u *Users) Role(ctx context.Context, userID int64) (Role, error) {
	var role string
	err := u.DB.QueryRowContext(ctx, `SELECT role FROM users WHERE id = ?`, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get role: %w", err)
	}
	return Role(role), nil
}

// SetRole changes the role of the user with the given email.
func (u *Users) SetRole(ctx context.Context, email string, role Role) error {
	res, err := u.DB.ExecContext(ctx, `UPDATE users SET role = ? WHERE email = ?`, string(role), normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListWithTaskCounts returns every user with the number of tasks they own.
func (u *Users) ListWithTaskCounts(ctx context.Context) ([]UserSummary, error) {
	rows, err := u.DB.QueryContext(ctx, `
		SELECT u.id, u.nickname, u.email, u.role, COUNT(t.id)
		FROM users u
		LEFT JOIN tasks t ON t.user_id = u.id
		GROUP BY u.id, u.nickname, u.email, u.role
		ORDER BY u.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	out := []UserSummary{}
	for rows.Next() {
		var s UserSummary
		var role string
		if err := rows.Scan(&s.ID, &s.Nickname, &s.Email, &role, &s.TaskCount); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		s.Role = Role(role)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a user together with their tasks and analytics events.
func (u *Users) Delete(ctx context.Context, userID int64) error {
	tx, err := u.DB.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("db begin failed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM analytics_events WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete analytics_events failed: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete tasks failed: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete user failed: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("db commit failed: %w", err)
	}
	return nil
}
