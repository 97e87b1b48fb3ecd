package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinic-scheduling/internal/db"
	"github.com/clinicore/clinic-scheduling/internal/logging"
)

func main() {
	log := logging.New("seed", os.Getenv("APP_ENV"))
	log.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	gofakeit.Seed(time.Now().UnixNano())

	professionals, err := seedProfessionals(context.Background(), pool, 50)
	if err != nil {
		log.Fatal().Err(err).Msg("seed professionals")
	}
	log.Info().Int("count", len(professionals)).Msg("professionals seeded")

	if err := seedAvailability(context.Background(), pool, professionals); err != nil {
		log.Fatal().Err(err).Msg("seed availability rules")
	}
	log.Info().Msg("availability rules seeded")

	if err := seedPatients(context.Background(), pool, 2000); err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}
	log.Info().Msg("patients seeded")

	log.Info().Msg("seed complete")
}

func seedProfessionals(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := "Dr. " + gofakeit.Name()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]
		price := float64(gofakeit.Number(80, 400))

		_, err := tx.Exec(ctx, `
			INSERT INTO professionals (id, name, specialty, price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, id, name, spec, price)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return ids, nil
}

// seedAvailability gives every professional a morning and an afternoon window
// on Monday through Saturday.
func seedAvailability(ctx context.Context, pool *pgxpool.Pool, professionals []uuid.UUID) error {
	windows := []struct {
		start string
		end   string
	}{
		{"08:00", "12:00"},
		{"13:00", "18:00"},
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, profID := range professionals {
		for day := 1; day <= 6; day++ {
			for _, w := range windows {
				_, err := tx.Exec(ctx, `
					INSERT INTO availability_rules (id, professional_id, day_of_week, start_time, end_time, is_active, created_at, updated_at)
					VALUES ($1, $2, $3, $4::time, $5::time, true, now(), now())
				`, uuid.New(), profID, day, w.start, w.end)
				if err != nil {
					return err
				}
			}
		}
	}

	return tx.Commit(ctx)
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			email := gofakeit.Email()

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
			`, id, name, email)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		fmt.Printf("patients seeded: %d/%d\n", end, count)
	}

	return nil
}
