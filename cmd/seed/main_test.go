package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"armory/internal/auth"
	"armory/internal/db"
	"armory/internal/repository"
	"armory/internal/service"
)

func TestSeedEquipment_Idempotent(t *testing.T) {
	gormDB, err := db.NewSQLite(filepath.Join(t.TempDir(), "seed_test.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB, false))
	svc := service.NewEquipmentService(repository.NewEquipmentRepository(gormDB))
	ctx := context.Background()

	created, skipped, err := seedEquipment(ctx, svc, demoEquipment)
	require.NoError(t, err)
	assert.Equal(t, len(demoEquipment), created)
	assert.Zero(t, skipped)

	created, skipped, err = seedEquipment(ctx, svc, demoEquipment)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, len(demoEquipment), skipped)

	_, _, err = seedEquipment(ctx, svc, []service.EquipmentInput{{Name: "Jeep", Category: "vehicle"}})
	assert.Error(t, err)
}

func TestSeedUser_SecondRunIsNoop(t *testing.T) {
	gormDB, err := db.NewSQLite(filepath.Join(t.TempDir(), "seed_test.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB, false))
	svc := service.NewAuthService(
		repository.NewUserRepository(gormDB),
		auth.NewJWTService("seed-secret", 0),
		auth.NewTokenStore(nil),
		zerolog.Nop(),
	)

	require.NoError(t, seedUser(context.Background(), svc, zerolog.Nop()))
	require.NoError(t, seedUser(context.Background(), svc, zerolog.Nop()))

	user, err := repository.NewUserRepository(gormDB).FindByUsername(context.Background(), "demo")
	require.NoError(t, err)
	assert.NotEmpty(t, user.IdentityCode)
}
