package models

import "time"

// GoalStatus is the progress state of a goal.
type GoalStatus string

const (
	GoalNotStarted GoalStatus = "Not Started"
	GoalInProgress GoalStatus = "In Progress"
	GoalCompleted  GoalStatus = "Completed"
)

// Valid reports whether s is one of the known statuses.
func (s GoalStatus) Valid() bool {
	switch s {
	case GoalNotStarted, GoalInProgress, GoalCompleted:
		return true
	}
	return false
}

// Goal is a savings or spending target owned by a user.
type Goal struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Type          string     `json:"type"`
	TargetAmount  float64    `json:"targetAmount"`
	CurrentAmount float64    `json:"currentAmount"`
	TargetDate    time.Time  `json:"targetDate"`
	Status        GoalStatus `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	UserID        string     `json:"userId"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// GoalFields holds client-editable goal fields. Nil fields are left
// untouched on update.
type GoalFields struct {
	Title         *string
	Type          *string
	TargetAmount  *float64
	CurrentAmount *float64
	TargetDate    *time.Time
	Status        *GoalStatus
	Notes         *string
}
