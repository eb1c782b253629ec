package storage

import (
	"context"

	"github.com/dvynshuu/fintrack/internal/models"
)

const goalColumns = `id, user_id, title, type, target_amount, current_amount, target_date,
	status, notes, created_at`

func scanGoal(row rowScanner) (*models.Goal, error) {
	var (
		g                     models.Goal
		targetDate, createdAt string
		status                string
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Type, &g.TargetAmount, &g.CurrentAmount,
		&targetDate, &status, &g.Notes, &createdAt)
	if err != nil {
		return nil, notFound(err)
	}
	g.Status = models.GoalStatus(status)
	if g.TargetDate, err = parseTime(targetDate); err != nil {
		return nil, err
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGoal inserts a goal owned by userID.
func (db *DB) CreateGoal(ctx context.Context, userID string, g models.Goal) (*models.Goal, error) {
	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO goals (id, user_id, title, type, target_amount, current_amount, target_date,
			status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+goalColumns,
		newID(), userID, g.Title, g.Type, g.TargetAmount, g.CurrentAmount, formatTime(g.TargetDate),
		string(g.Status), g.Notes, formatTime(db.now()),
	)
	return scanGoal(row)
}

// ListGoals retrieves the user's goals, latest target date first.
func (db *DB) ListGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY target_date DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// UpdateGoal applies the non-nil fields to the goal only if userID owns
// it.
func (db *DB) UpdateGoal(ctx context.Context, userID, id string, f models.GoalFields) (*models.Goal, error) {
	var status any
	if f.Status != nil {
		status = string(*f.Status)
	}
	row := db.conn.QueryRowContext(ctx,
		`UPDATE goals SET
			title = COALESCE(?, title),
			type = COALESCE(?, type),
			target_amount = COALESCE(?, target_amount),
			current_amount = COALESCE(?, current_amount),
			target_date = COALESCE(?, target_date),
			status = COALESCE(?, status),
			notes = COALESCE(?, notes)
		WHERE id = ? AND user_id = ?
		RETURNING `+goalColumns,
		opt(f.Title), opt(f.Type), opt(f.TargetAmount), opt(f.CurrentAmount), optTime(f.TargetDate),
		status, opt(f.Notes), id, userID,
	)
	return scanGoal(row)
}

// DeleteGoal removes the goal only if userID owns it.
func (db *DB) DeleteGoal(ctx context.Context, userID, id string) error {
	var deleted string
	err := db.conn.QueryRowContext(ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ? RETURNING id`,
		id, userID,
	).Scan(&deleted)
	return notFound(err)
}
