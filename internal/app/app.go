// Package app wires configuration, storage and services into a running
// parking engine. Both the API server and the operator CLI build on it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/smart_parking/internal/adapter/handler"
	"github.com/srgjo27/smart_parking/internal/adapter/notification"
	"github.com/srgjo27/smart_parking/internal/adapter/repository/memory"
	"github.com/srgjo27/smart_parking/internal/adapter/repository/postgres"
	"github.com/srgjo27/smart_parking/internal/config"
	"github.com/srgjo27/smart_parking/internal/core/domain"
	"github.com/srgjo27/smart_parking/internal/core/ports"
	"github.com/srgjo27/smart_parking/internal/core/services"
	"github.com/srgjo27/smart_parking/internal/platform/cache"
	"github.com/srgjo27/smart_parking/internal/platform/database"
)

type repositories struct {
	subscribers ports.SubscriberRepository
	orders      ports.OrderRepository
	sessions    ports.SessionRepository
	lots        ports.LotRepository
	reports     ports.ReportRepository
	seed        func(ctx context.Context, sub *domain.Subscriber) error
}

type App struct {
	Config       *config.Config
	Location     *time.Location
	Availability *services.AvailabilityService
	Reservations *services.ReservationService
	Sessions     *services.SessionService
	Reports      *services.ReportService
	Monitor      *services.LatePickupMonitor

	db      *sql.DB
	redis   *redis.Client
	lots    ports.LotRepository
	repos   repositories
	closers []func() error
}

// New connects to the configured backends. Redis and RabbitMQ are optional:
// when unreachable the engine runs uncached and logs notifications.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid facility timezone: %w", err)
	}

	a := &App{Config: cfg, Location: loc}

	if err := a.openStore(); err != nil {
		return nil, err
	}

	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logrus.Warnf("Stats cache disabled: %v", err)
		} else {
			a.redis = client
			a.closers = append(a.closers, client.Close)
		}
	}

	var notifier ports.NotificationSender = notification.NewLogSender()
	if cfg.RabbitMQ.Enabled {
		sender, err := notification.NewRabbitMQSender(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			logrus.Warnf("RabbitMQ unavailable, notifications will be logged: %v", err)
		} else {
			a.closers = append(a.closers, sender.Close)
			notifier = sender
		}
	}

	r := a.repos
	locker := services.NewLotLocker()

	a.Availability = services.NewAvailabilityService(r.lots, r.sessions, r.orders, a.redis, cfg.Facility.DefaultLot)
	a.Availability.SetStatsTTL(cfg.Redis.StatsTTL)
	a.Reservations = services.NewReservationService(r.subscribers, r.orders, r.lots, a.Availability, locker)
	a.Sessions = services.NewSessionService(r.subscribers, r.sessions, r.lots, a.Reservations, a.Availability, notifier, locker)
	a.Reports = services.NewReportService(r.sessions, r.orders, r.reports, loc)
	a.Monitor = services.NewLatePickupMonitor(r.sessions, r.subscribers, notifier, cfg.Monitor.Interval, cfg.Monitor.RetryInterval)

	clock := func() time.Time { return time.Now().In(loc) }
	a.Availability.SetClock(clock)
	a.Reservations.SetClock(clock)
	a.Sessions.SetClock(clock)
	a.Reports.SetClock(clock)
	a.Monitor.SetClock(clock)

	return a, nil
}

func (a *App) openStore() error {
	switch a.Config.Store.Driver {
	case "memory":
		store := memory.NewStore(a.Config.DomainLots()...)
		a.repos = repositories{
			subscribers: store.Subscribers(),
			orders:      store.Orders(),
			sessions:    store.Sessions(),
			lots:        store.Lots(),
			reports:     store.Reports(),
			seed: func(_ context.Context, sub *domain.Subscriber) error {
				store.AddSubscriber(*sub)
				return nil
			},
		}
		logrus.Warn("Using in-memory store: state is lost on restart")

	default:
		db, err := database.NewPostgresDB(a.Config.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to db after retries: %w", err)
		}
		a.db = db
		a.closers = append(a.closers, db.Close)

		subscribers := postgres.NewSubscriberRepository(db)
		a.repos = repositories{
			subscribers: subscribers,
			orders:      postgres.NewOrderRepository(db),
			sessions:    postgres.NewSessionRepository(db),
			lots:        postgres.NewLotRepository(db),
			reports:     postgres.NewReportRepository(db),
			seed:        subscribers.Upsert,
		}
	}

	a.lots = a.repos.lots
	return nil
}

// Migrate creates the schema. It is a no-op for the in-memory store.
func (a *App) Migrate(ctx context.Context) error {
	if a.db == nil {
		return nil
	}

	return database.RunMigrations(ctx, a.db)
}

// SeedLots writes the configured lot capacities to the store.
func (a *App) SeedLots(ctx context.Context) error {
	for _, lot := range a.Config.DomainLots() {
		if err := a.lots.Upsert(ctx, lot); err != nil {
			return fmt.Errorf("failed to seed lot %s: %w", lot.Name, err)
		}
		a.Availability.Invalidate(ctx, lot.Name)
	}

	logrus.Infof("Seeded %d lots", len(a.Config.Lots))
	return nil
}

func (a *App) SeedSubscribers(ctx context.Context) error {
	subs := a.Config.DomainSubscribers()
	for i := range subs {
		if err := a.repos.seed(ctx, &subs[i]); err != nil {
			return fmt.Errorf("failed to seed subscriber %d: %w", subs[i].Code, err)
		}
	}

	if len(subs) > 0 {
		logrus.Infof("Seeded %d subscribers", len(subs))
	}
	return nil
}

func (a *App) Lots(ctx context.Context) ([]domain.Lot, error) {
	return a.lots.List(ctx)
}

func (a *App) HealthChecks() map[string]handler.Check {
	checks := map[string]handler.Check{}
	if a.db != nil {
		checks["postgres"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}
	return checks
}

func (a *App) Handler() *handler.ParkingHandler {
	return handler.NewParkingHandler(a.Reservations, a.Sessions, a.Availability, a.Reports, a.Location)
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logrus.Warnf("close: %v", err)
		}
	}
}
