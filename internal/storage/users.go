package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvynshuu/fintrack/internal/models"
)

const userColumns = `id, name, email, password_hash, profile_picture, phone, location,
	currency, language, notifications, settings, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		settings  string
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ProfilePicture, &u.Phone,
		&u.Location, &u.Currency, &u.Language, &u.Notifications, &settings, &createdAt)
	if err != nil {
		return nil, notFound(err)
	}
	u.Settings = models.DefaultSettings()
	if err := json.Unmarshal([]byte(settings), &u.Settings); err != nil {
		return nil, fmt.Errorf("decode settings for user %s: %w", u.ID, err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new account with default preferences.
func (db *DB) CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error) {
	defaults := models.DefaultSettings()
	settings, err := json.Marshal(defaults)
	if err != nil {
		return nil, err
	}

	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, profile_picture, currency, language,
			notifications, settings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		newID(), nu.Name, nu.Email, nu.PasswordHash, nu.ProfilePicture,
		defaults.Currency, defaults.Language, true, string(settings), formatTime(db.now()),
	)
	u, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	return u, err
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by exact, case-sensitive email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// UpdateProfile applies the non-nil fields of upd to the user's profile.
func (db *DB) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`UPDATE users SET
			name = COALESCE(?, name),
			email = COALESCE(?, email),
			phone = COALESCE(?, phone),
			location = COALESCE(?, location),
			currency = COALESCE(?, currency),
			language = COALESCE(?, language),
			notifications = COALESCE(?, notifications)
		WHERE id = ?
		RETURNING `+userColumns,
		opt(upd.Name), opt(upd.Email), opt(upd.Phone), opt(upd.Location),
		opt(upd.Currency), opt(upd.Language), opt(upd.Notifications), userID,
	)
	u, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	return u, err
}

// GetSettings returns the user's preferences.
func (db *DB) GetSettings(ctx context.Context, userID string) (models.Settings, error) {
	u, err := db.GetUserByID(ctx, userID)
	if err != nil {
		return models.Settings{}, err
	}
	return u.Settings, nil
}

// ReplaceSettings overwrites the user's preferences.
func (db *DB) ReplaceSettings(ctx context.Context, userID string, s models.Settings) (models.Settings, error) {
	encoded, err := json.Marshal(s)
	if err != nil {
		return models.Settings{}, err
	}
	res, err := db.conn.ExecContext(ctx, `UPDATE users SET settings = ? WHERE id = ?`, string(encoded), userID)
	if err != nil {
		return models.Settings{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Settings{}, err
	}
	if n == 0 {
		return models.Settings{}, ErrNotFound
	}
	return s, nil
}

// DeleteUser removes an account together with everything it owns.
func (db *DB) DeleteUser(ctx context.Context, userID string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUserByEmail removes the account registered under email.
func (db *DB) DeleteUserByEmail(ctx context.Context, email string) error {
	u, err := db.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	return db.DeleteUser(ctx, u.ID)
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
