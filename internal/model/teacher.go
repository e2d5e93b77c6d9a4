package model

import "time"

// Teacher is a member of staff who can be scheduled to teach sessions.
type Teacher struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	AdminID   *int      `json:"admin_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeacherRequest is the payload for creating or updating a teacher.
type TeacherRequest struct {
	Name    string  `json:"name" binding:"required,min=2,max=100"`
	Email   *string `json:"email" binding:"omitempty,email,max=255"`
	AdminID *int    `json:"admin_id" binding:"omitempty,min=1"`
}
