package model

import (
	"fmt"
	"time"
)

// Class represents a school class group, e.g. "XI RPL 2".
type Class struct {
	ID                int       `json:"id"`
	GradeLevel        string    `json:"grade_level"`
	MajorCode         string    `json:"major_code"`
	GroupNumber       int       `json:"group_number"`
	HomeroomTeacherID *int      `json:"homeroom_teacher_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Name renders the conventional display name of the class.
func (c Class) Name() string {
	return fmt.Sprintf("%s %s %d", c.GradeLevel, c.MajorCode, c.GroupNumber)
}

// ClassRequest is the payload for creating or updating a class.
type ClassRequest struct {
	GradeLevel        string `json:"grade_level" binding:"required,min=1,max=10"`
	MajorCode         string `json:"major_code" binding:"required,min=1,max=10"`
	GroupNumber       int    `json:"group_number" binding:"required,min=1"`
	HomeroomTeacherID *int   `json:"homeroom_teacher_id" binding:"omitempty,min=1"`
}
