package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/jadwal-backend/internal/config"
	"github.com/stemsi/jadwal-backend/internal/database"
	"github.com/stemsi/jadwal-backend/internal/grading"
	"github.com/stemsi/jadwal-backend/internal/logger"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/repository"
	"github.com/stemsi/jadwal-backend/internal/service"
)

// defaultScale is the school-wide predicate scale.
var defaultScale = []struct {
	label    string
	min, max float64
	points   float64
	remarks  string
}{
	{"A", 86, 100, 4, "Sangat Baik"},
	{"B", 71, 85, 3, "Baik"},
	{"C", 56, 70, 2, "Cukup"},
	{"D", 0, 55, 1, "Perlu Bimbingan"},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// No change feed: nobody is subscribed while seeding.
	gradingService := service.NewGradingService(repository.NewGradingRepository(pool), nil, log)

	existing, err := gradingService.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list grading systems")
	}
	for _, g := range existing {
		if g.IsDefault {
			fmt.Printf("Default grading system %q already exists (%s). Nothing to do.\n", g.Name, g.ID)
			return
		}
	}

	req := model.CreateGradingSystemRequest{
		Name:        "Skala Predikat Sekolah",
		Description: "Skala nilai bawaan",
		IsDefault:   true,
	}
	for _, b := range defaultScale {
		lo, hi := b.min, b.max
		req.Bands = append(req.Bands, model.GradeBandInput{
			Label:         b.label,
			MinPercentage: &lo,
			MaxPercentage: &hi,
			GradePoints:   b.points,
			Remarks:       b.remarks,
		})
	}

	g, gaps, err := gradingService.Create(ctx, 0, req)
	var bandErr *grading.BandError
	if errors.As(err, &bandErr) {
		log.Fatal().Str("lower", bandErr.Lower.Label).Str("upper", bandErr.Upper.Label).Msg("Seed scale overlaps")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create grading system")
	}

	fmt.Printf("Created grading system %q (%s) with %d bands.\n", g.Name, g.ID, len(g.Bands))
	for _, gap := range gaps {
		fmt.Printf("Warning: %s is not covered by any band\n", gap)
	}
}
