package model

import (
	"time"

	"github.com/google/uuid"
)

// GradingSystem is a named set of grade bands, e.g. the school-wide scale.
type GradingSystem struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	IsDefault   bool        `json:"is_default"`
	Version     int         `json:"version"`
	Bands       []GradeBand `json:"bands"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// GradeBand maps a percentage interval [MinPercentage, MaxPercentage] to a letter grade.
type GradeBand struct {
	ID            int     `json:"id,omitempty"`
	Label         string  `json:"label"`
	MinPercentage float64 `json:"min_percentage"`
	MaxPercentage float64 `json:"max_percentage"`
	GradePoints   float64 `json:"grade_points"`
	Remarks       string  `json:"remarks"`
}

// GradeBandInput is one band in a create/update payload.
type GradeBandInput struct {
	Label         string   `json:"label" binding:"required,max=10"`
	MinPercentage *float64 `json:"min_percentage" binding:"required,gte=0,lte=100"`
	MaxPercentage *float64 `json:"max_percentage" binding:"required,gte=0,lte=100"`
	GradePoints   float64  `json:"grade_points" binding:"gte=0,lte=10"`
	Remarks       string   `json:"remarks" binding:"max=255"`
}

// ToBand converts validated input to a GradeBand.
func (in GradeBandInput) ToBand() GradeBand {
	b := GradeBand{Label: in.Label, GradePoints: in.GradePoints, Remarks: in.Remarks}
	if in.MinPercentage != nil {
		b.MinPercentage = *in.MinPercentage
	}
	if in.MaxPercentage != nil {
		b.MaxPercentage = *in.MaxPercentage
	}
	return b
}

// BandsFromInput converts a slice of inputs.
func BandsFromInput(in []GradeBandInput) []GradeBand {
	bands := make([]GradeBand, len(in))
	for i, b := range in {
		bands[i] = b.ToBand()
	}
	return bands
}

// CreateGradingSystemRequest is the payload for creating a grading system.
type CreateGradingSystemRequest struct {
	Name        string           `json:"name" binding:"required,min=2,max=100"`
	Description string           `json:"description" binding:"max=255"`
	IsDefault   bool             `json:"is_default"`
	Bands       []GradeBandInput `json:"bands" binding:"required,min=1,dive"`
}

// UpdateGradingSystemRequest replaces a grading system's name and full band set.
type UpdateGradingSystemRequest struct {
	CreateGradingSystemRequest
	Version int `json:"version" binding:"required,min=1"`
}

// ValidateBandsRequest is a dry-run validation of a band set.
type ValidateBandsRequest struct {
	Bands []GradeBandInput `json:"bands" binding:"required,min=1,dive"`
}

// ClassifyRequest asks which band each percentage falls into.
type ClassifyRequest struct {
	Percentages []float64 `json:"percentages" binding:"required,min=1,max=500,dive,gte=0,lte=100"`
}

// Classification is the band a percentage falls into.
type Classification struct {
	Percentage  float64  `json:"percentage"`
	Label       *string  `json:"label"`
	GradePoints *float64 `json:"grade_points"`
	Remarks     string   `json:"remarks,omitempty"`
}
