// Package wire provides dependency injection for the atelier application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	cliadapter "github.com/example/atelier/internal/adapters/cli"
	"github.com/example/atelier/internal/adapters/redisstream"
	"github.com/example/atelier/internal/adapters/sqlstore"
	"github.com/example/atelier/internal/app"
	"github.com/example/atelier/internal/config"
	"github.com/example/atelier/internal/db"
	"github.com/example/atelier/internal/logging"
	"github.com/example/atelier/internal/ports/primary"
	"github.com/example/atelier/internal/ports/secondary"
)

// auditStreamMaxLen caps the audit stream mirror.
const auditStreamMaxLen = 100000

var (
	cfg         *config.Config
	logger      *zap.Logger
	database    *sqlx.DB
	redisClient *redis.Client
	dispatcher  *app.AuditDispatcher

	assignmentService primary.AssignmentService
	orderService      primary.OrderService
	absenceService    primary.AbsenceService
	calendarService   primary.CalendarService
	auditService      primary.AuditService

	once    sync.Once
	initErr error
)

// Init builds every service. It is safe to call repeatedly; the first
// failure is returned on every call.
func Init() error {
	once.Do(func() { initErr = initServices() })
	return initErr
}

func mustInit() {
	if err := Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize atelier: %v\n", err)
		os.Exit(1)
	}
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err = config.Load(dir)
	if err != nil {
		return err
	}

	logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, "atelier")
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	database, err = db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	applied, err := db.RunMigrations(database)
	if err != nil {
		return err
	}
	for _, m := range applied {
		logger.Info("applied migration", zap.Int("version", m.Version), zap.String("name", m.Name))
	}

	dayEnd, err := cfg.DefaultDayEnd()
	if err != nil {
		return err
	}

	// Audit events land in the database first; the Redis stream is a mirror.
	sinks := app.MultiSink{sqlstore.NewAuditRepository(database)}
	if cfg.Redis.Addr != "" {
		redisClient = redisstream.NewClient(cfg.Redis)
		if cfg.Audit.Stream != "" {
			sinks = append(sinks, redisstream.NewAuditSink(redisClient, cfg.Audit.Stream, auditStreamMaxLen))
		}
	}
	var sink secondary.AuditSink = sinks
	if len(sinks) == 1 {
		sink = sinks[0]
	}
	dispatcher = app.NewAuditDispatcher(sink, logger.Named("audit"), app.AuditDispatcherOptions{
		Async:  cfg.Audit.Async,
		Buffer: cfg.Audit.Buffer,
	})

	store := sqlstore.NewStore(database)
	durations := app.NewDurationCalculator(logger.Named("duration"))

	assignments := app.NewAssignmentService(store, durations, dispatcher, logger.Named("assignment"))
	assignmentService = assignments
	orderService = app.NewOrderService(store, assignments, dispatcher, logger.Named("order"))
	absenceService = app.NewAbsenceService(store, assignments, dispatcher, logger.Named("absence"), dayEnd)
	calendarService = app.NewCalendarService(store, durations, dispatcher)
	auditService = app.NewAuditService(sqlstore.NewAuditRepository(database))

	return nil
}

// Config returns the loaded configuration.
func Config() *config.Config {
	mustInit()
	return cfg
}

// Logger returns the application logger.
func Logger() *zap.Logger {
	mustInit()
	return logger
}

// AssignmentService returns the singleton AssignmentService instance.
func AssignmentService() primary.AssignmentService {
	mustInit()
	return assignmentService
}

// OrderService returns the singleton OrderService instance.
func OrderService() primary.OrderService {
	mustInit()
	return orderService
}

// AbsenceService returns the singleton AbsenceService instance.
func AbsenceService() primary.AbsenceService {
	mustInit()
	return absenceService
}

// CalendarService returns the singleton CalendarService instance.
func CalendarService() primary.CalendarService {
	mustInit()
	return calendarService
}

// AuditService returns the singleton AuditService instance.
func AuditService() primary.AuditService {
	mustInit()
	return auditService
}

// AbsenceConsumer returns a consumer for the configured absence stream.
func AbsenceConsumer() (*redisstream.AbsenceConsumer, error) {
	mustInit()
	if redisClient == nil {
		return nil, errors.New("redis.addr is not configured")
	}
	return redisstream.NewAbsenceConsumer(redisClient, absenceService, redisstream.AbsenceConsumerConfig{
		Stream:   cfg.Absence.Stream,
		Group:    cfg.Absence.Group,
		Consumer: cfg.ConsumerName(),
		Block:    time.Duration(cfg.Absence.BlockMillis) * time.Millisecond,
	}, logger.Named("absence-consumer")), nil
}

// Shutdown drains pending audit events and releases connections.
func Shutdown(ctx context.Context) error {
	if initErr != nil || database == nil {
		return nil
	}

	var errs []error
	if err := dispatcher.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("audit dispatcher: %w", err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if err := database.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	_ = logger.Sync()
	return errors.Join(errs...)
}

// AssignmentAdapter returns a new AssignmentAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func AssignmentAdapter() *cliadapter.AssignmentAdapter {
	return AssignmentAdapterWithOutput(os.Stdout)
}

// AssignmentAdapterWithOutput returns a new AssignmentAdapter writing to the given output.
func AssignmentAdapterWithOutput(out io.Writer) *cliadapter.AssignmentAdapter {
	return cliadapter.NewAssignmentAdapter(AssignmentService(), out)
}

// OrderAdapter returns a new OrderAdapter writing to stdout.
func OrderAdapter() *cliadapter.OrderAdapter {
	return cliadapter.NewOrderAdapter(OrderService(), os.Stdout)
}

// AbsenceAdapter returns a new AbsenceAdapter writing to stdout.
func AbsenceAdapter() *cliadapter.AbsenceAdapter {
	return cliadapter.NewAbsenceAdapter(AbsenceService(), os.Stdout)
}

// CalendarAdapter returns a new CalendarAdapter writing to stdout.
func CalendarAdapter() *cliadapter.CalendarAdapter {
	return cliadapter.NewCalendarAdapter(CalendarService(), os.Stdout)
}

// AuditAdapter returns a new AuditAdapter writing to stdout.
func AuditAdapter() *cliadapter.AuditAdapter {
	return cliadapter.NewAuditAdapter(AuditService(), os.Stdout)
}
