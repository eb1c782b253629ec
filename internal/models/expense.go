package models

import "time"

// Entry is a dated money movement owned by a user. Expenses and incomes
// share this shape and live in separate tables.
type Entry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes,omitempty"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// EntryFields holds client-editable entry fields. Nil fields are left
// untouched on update.
type EntryFields struct {
	Title    *string
	Amount   *float64
	Category *string
	Date     *time.Time
	Notes    *string
}

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// MonthlyTotal is the summed amount of one calendar month, labelled
// "YYYY-M".
type MonthlyTotal struct {
	Month    string  `json:"month"`
	Expenses float64 `json:"expenses"`
}
