package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/rs/zerolog"

	"armory/internal/auth"
	"armory/internal/config"
	"armory/internal/db"
	apperrors "armory/internal/errors"
	"armory/internal/logger"
	"armory/internal/repository"
	"armory/internal/service"
)

// demoEquipment is registered on every run; items whose QR token already
// exists are skipped.
var demoEquipment = []service.EquipmentInput{
	{Name: "M4 Carbine", Category: "gun", QRToken: "DEMO-GUN-001"},
	{Name: "Glock 17", Category: "gun", QRToken: "DEMO-GUN-002"},
	{Name: "5.56mm Ammunition Box", Category: "ammo", QRToken: "DEMO-AMMO-001"},
	{Name: "9mm Ammunition Box", Category: "ammo", QRToken: "DEMO-AMMO-002"},
	{Name: "M67 Grenade", Category: "explosive", QRToken: "DEMO-EXP-001"},
}

func main() {
	withUser := flag.Bool("user", false, "also register a demo user (demo / demo1234)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fallback := logger.NewDefault("info")
		fallback.Fatal().Err(err).Msg("load config")
	}
	log := logger.NewDefault(cfg.LogLevel)
	log.Info().Msg("starting seed script")

	gormDB, err := db.Open(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	if err := db.Migrate(gormDB, false); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	ctx := context.Background()
	equipmentService := service.NewEquipmentService(repository.NewEquipmentRepository(gormDB))

	created, skipped, err := seedEquipment(ctx, equipmentService, demoEquipment)
	if err != nil {
		log.Fatal().Err(err).Msg("seed equipment")
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("equipment seeded")

	if *withUser {
		authService := service.NewAuthService(
			repository.NewUserRepository(gormDB),
			auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL),
			auth.NewTokenStore(nil),
			log,
		)
		if err := seedUser(ctx, authService, log); err != nil {
			log.Fatal().Err(err).Msg("seed user")
		}
	}
}

// seedEquipment registers items, counting duplicates instead of failing on them.
func seedEquipment(ctx context.Context, svc service.EquipmentService, items []service.EquipmentInput) (created int, skipped int, err error) {
	for _, item := range items {
		if _, err := svc.Create(ctx, item); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("create %s: %w", item.QRToken, err)
		}
		created++
	}
	return created, skipped, nil
}

func seedUser(ctx context.Context, svc service.AuthService, log zerolog.Logger) error {
	result, err := svc.Register(ctx, service.RegisterInput{
		Username:        "demo",
		Password:        "demo1234",
		ConfirmPassword: "demo1234",
		FullName:        "Demo Operator",
		Rank:            "Private",
		Unit:            "Demo Company",
		Email:           "demo@example.com",
		Role:            "Military Personnel",
	})
	if errors.Is(err, apperrors.ErrConflict) {
		log.Info().Msg("demo user already exists")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("username", result.User.Username).Str("identity_code", result.User.IdentityCode).Msg("demo user created")
	return nil
}
