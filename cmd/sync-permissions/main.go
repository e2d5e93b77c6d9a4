package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/stemsi/jadwal-backend/internal/config"
	"github.com/stemsi/jadwal-backend/internal/database"
	"github.com/stemsi/jadwal-backend/internal/logger"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/repository"
)

func main() {
	roleID := flag.Int("role", 1, "Role that receives every permission")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	roleRepo := repository.NewRoleRepository(pool)

	fmt.Println("=== Sync Permissions ===")
	fmt.Printf("Registering %d permission codes and granting all of them to role %d.\n",
		len(model.AllPermissions), *roleID)

	if _, err := roleRepo.GetRoleByID(ctx, *roleID); err != nil {
		log.Fatal().Err(err).Int("role_id", *roleID).Msg("Role not found")
	}

	codes := model.PermissionStrings(model.AllPermissions)
	if err := roleRepo.SyncPermissions(ctx, *roleID, codes); err != nil {
		log.Fatal().Err(err).Msg("Failed to sync permissions")
	}

	fmt.Printf("\nSuccess! Role %d now has full access, including newly added permissions.\n", *roleID)
}
