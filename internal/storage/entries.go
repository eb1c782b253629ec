package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dvynshuu/fintrack/internal/models"
)

// EntryKind selects the expenses or incomes table.
type EntryKind struct {
	table string
	name  string
}

var (
	Expenses = EntryKind{table: "expenses", name: "Expense"}
	Incomes  = EntryKind{table: "incomes", name: "Income"}
)

// Name is the singular, capitalized resource name.
func (k EntryKind) Name() string {
	return k.name
}

const entryColumns = `id, user_id, title, amount, category, date, notes, created_at`

func scanEntry(row rowScanner) (*models.Entry, error) {
	var (
		e               models.Entry
		date, createdAt string
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Amount, &e.Category, &date, &e.Notes, &createdAt); err != nil {
		return nil, notFound(err)
	}
	var err error
	if e.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEntry inserts an entry owned by userID.
func (db *DB) CreateEntry(ctx context.Context, kind EntryKind, userID string, e models.Entry) (*models.Entry, error) {
	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO `+kind.table+` (id, user_id, title, amount, category, date, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+entryColumns,
		newID(), userID, e.Title, e.Amount, e.Category, formatTime(e.Date), e.Notes, formatTime(db.now()),
	)
	return scanEntry(row)
}

// ListEntries retrieves the user's entries, newest date first.
func (db *DB) ListEntries(ctx context.Context, kind EntryKind, userID string) ([]models.Entry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM `+kind.table+`
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// UpdateEntry applies the non-nil fields to the entry only if userID
// owns it. ErrNotFound covers both a missing and a foreign entry.
func (db *DB) UpdateEntry(ctx context.Context, kind EntryKind, userID, id string, f models.EntryFields) (*models.Entry, error) {
	row := db.conn.QueryRowContext(ctx,
		`UPDATE `+kind.table+` SET
			title = COALESCE(?, title),
			amount = COALESCE(?, amount),
			category = COALESCE(?, category),
			date = COALESCE(?, date),
			notes = COALESCE(?, notes)
		WHERE id = ? AND user_id = ?
		RETURNING `+entryColumns,
		opt(f.Title), opt(f.Amount), opt(f.Category), optTime(f.Date), opt(f.Notes), id, userID,
	)
	return scanEntry(row)
}

// DeleteEntry removes the entry only if userID owns it.
func (db *DB) DeleteEntry(ctx context.Context, kind EntryKind, userID, id string) error {
	var deleted string
	err := db.conn.QueryRowContext(ctx,
		`DELETE FROM `+kind.table+` WHERE id = ? AND user_id = ? RETURNING id`,
		id, userID,
	).Scan(&deleted)
	return notFound(err)
}

// CategoryTotals sums the user's entries per category, largest first.
func (db *DB) CategoryTotals(ctx context.Context, kind EntryKind, userID string) ([]models.CategoryTotal, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT category, SUM(amount) AS total FROM `+kind.table+`
		WHERE user_id = ?
		GROUP BY category
		ORDER BY total DESC, category`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []models.CategoryTotal{}
	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Amount); err != nil {
			return nil, err
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// MonthlyTotals sums the user's entries per calendar month (UTC),
// oldest first.
func (db *DB) MonthlyTotals(ctx context.Context, kind EntryKind, userID string) ([]models.MonthlyTotal, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT substr(date, 1, 7) AS month, SUM(amount) FROM `+kind.table+`
		WHERE user_id = ?
		GROUP BY month
		ORDER BY month`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []models.MonthlyTotal{}
	for rows.Next() {
		var (
			month string
			mt    models.MonthlyTotal
		)
		if err := rows.Scan(&month, &mt.Expenses); err != nil {
			return nil, err
		}
		if mt.Month, err = monthLabel(month); err != nil {
			return nil, err
		}
		totals = append(totals, mt)
	}
	return totals, rows.Err()
}

// monthLabel turns "2024-01" into "2024-1".
func monthLabel(yyyymm string) (string, error) {
	t, err := time.Parse("2006-01", yyyymm)
	if err != nil {
		return "", fmt.Errorf("parse month %q: %w", yyyymm, err)
	}
	return strconv.Itoa(t.Year()) + "-" + strconv.Itoa(int(t.Month())), nil
}
