package entity

import "time"

// Task is a single to-do record owned by one user.
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Priority  string    `json:"priority,omitempty"`
	DueDate   string    `json:"dueDate,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
