package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/logging"
	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

const (
	patientCount     = 200
	appointmentCount = 400
)

var (
	periods   = []string{"tomorrow", "the day after tomorrow", "soon", "next week", "in 2 weeks", "in 3 weeks", "next month"}
	lengths   = []int{15, 30, 45, 60}
	seedTags  = []string{"checkup", "followup", "bloodwork", "vaccination", "urgent", "consult"}
	seedNotes = []string{"", "", "Bring previous test results", "First visit", "Fasting required"}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("dev", "info")
		fallback.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.New(cfg.Env, cfg.LogLevel).With().Str("service", "seed").Logger()
	logger.Info().Msg("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	locker, rdb, err := redisclient.NewLocker(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect lock backend")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Booking events are noise at seed volume.
	svc := appointment.NewService(appointment.NewPgRepository(pool), locker, nil, logger.Level(zerolog.WarnLevel))
	faker := gofakeit.New(0)

	patients, err := seedPatients(ctx, svc, faker, logger, patientCount)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed patients")
	}
	if err := seedAppointments(ctx, svc, faker, logger, patients, appointmentCount); err != nil {
		logger.Fatal().Err(err).Msg("seed appointments")
	}

	logger.Info().Msg("seed complete")
}

func seedPatients(ctx context.Context, svc *appointment.Service, faker *gofakeit.Faker, logger zerolog.Logger, count int) ([]uuid.UUID, error) {
	logger.Info().Int("count", count).Msg("seeding patients")

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		email := faker.Email()
		p, err := svc.RegisterPatient(ctx, faker.Name(), &email)
		if err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)

		if (i+1)%50 == 0 {
			logger.Info().Int("done", i+1).Int("total", count).Msg("patients seeded")
		}
	}
	return ids, nil
}

// seedAppointments books random sub-slots of the free slots in random
// periods. Clashes are skipped.
func seedAppointments(ctx context.Context, svc *appointment.Service, faker *gofakeit.Faker, logger zerolog.Logger, patients []uuid.UUID, count int) error {
	logger.Info().Int("count", count).Msg("seeding appointments")

	booked, skipped := 0, 0
	for booked < count && skipped < count {
		avail, err := svc.FindFreeSlots(ctx, periods[faker.Number(0, len(periods)-1)], time.Now())
		if err != nil {
			return err
		}

		slot, ok := pickSlot(faker, avail.Slots)
		if !ok {
			skipped++
			continue
		}

		_, err = svc.BookAppointment(ctx, appointment.BookRequest{
			PatientID: patients[faker.Number(0, len(patients)-1)],
			Slot:      slot,
			Details:   seedNotes[faker.Number(0, len(seedNotes)-1)],
			Tags:      []string{seedTags[faker.Number(0, len(seedTags)-1)]},
		})
		switch {
		case errors.Is(err, schedule.ErrClash), errors.Is(err, appointment.ErrCalendarBusy):
			skipped++
			continue
		case err != nil:
			return err
		}

		booked++
		if booked%100 == 0 {
			logger.Info().Int("done", booked).Int("total", count).Msg("appointments seeded")
		}
	}

	logger.Info().Int("booked", booked).Int("skipped", skipped).Msg("appointments seeded")
	return nil
}

// pickSlot chooses a quarter-hour aligned booking inside one of the free
// slots and formats it the way BookAppointment expects.
func pickSlot(faker *gofakeit.Faker, free []schedule.Interval) (string, bool) {
	if len(free) == 0 {
		return "", false
	}
	gap := free[faker.Number(0, len(free)-1)]

	length := time.Duration(lengths[faker.Number(0, len(lengths)-1)]) * time.Minute
	first := gap.Start.Truncate(15 * time.Minute)
	if first.Before(gap.Start) {
		first = first.Add(15 * time.Minute)
	}
	room := gap.End.Sub(first) - length
	if room < 0 {
		return "", false
	}

	start := first.Add(time.Duration(faker.Number(0, int(room/(15*time.Minute)))) * 15 * time.Minute)
	end := start.Add(length)
	return fmt.Sprintf("%s %s - %s", schedule.FormatDate(start), schedule.FormatClock(start), schedule.FormatClock(end)), true
}
