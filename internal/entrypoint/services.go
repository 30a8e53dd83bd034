package entrypoint

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mikestefanello/backlite"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/mangashelf/internal/audit"
	"github.com/mrlokans/mangashelf/internal/catalog"
	"github.com/mrlokans/mangashelf/internal/config"
	"github.com/mrlokans/mangashelf/internal/covers"
	"github.com/mrlokans/mangashelf/internal/database"
	auditrepo "github.com/mrlokans/mangashelf/internal/database/audit"
	"github.com/mrlokans/mangashelf/internal/database/users"
	"github.com/mrlokans/mangashelf/internal/events"
	"github.com/mrlokans/mangashelf/internal/loans"
	"github.com/mrlokans/mangashelf/internal/lookup"
	"github.com/mrlokans/mangashelf/internal/tasks"
)

// Services holds the wired application components shared by the server and CLI commands.
type Services struct {
	Config *config.Config
	Logger *slog.Logger

	DB        *database.Database
	Catalog   *catalog.Service
	Loans     *loans.Engine
	LoanStore *database.LoanStore
	Users     *users.Repository
	Audit     *audit.Service
	Auditor   *audit.Auditor
	Covers    *covers.Cache
	Tasks     *tasks.Client // nil when the task queue is disabled

	closers []func() error
}

// NewServices opens the database and wires every component. Callers must Close it.
func NewServices(cfg *config.Config, log *slog.Logger) (*Services, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Services{Config: cfg, Logger: log}

	db, err := database.Open(cfg.Database, logger.Warn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s.DB = db
	s.closers = append(s.closers, db.Close)

	s.Users = users.NewRepository(db.DB)
	s.Audit = audit.NewService(auditrepo.NewRepository(db.DB), log)
	s.closers = append(s.closers, func() error {
		s.Audit.Wait()
		return nil
	})
	s.Auditor = audit.NewAuditor(cfg.Audit.Dir)

	s.Covers, err = covers.NewCache(cfg.Covers.Dir, cfg.Lookup.UserAgent)
	if err != nil {
		log.Warn("cover cache disabled", "dir", cfg.Covers.Dir, "error", err)
		s.Covers = nil
	}

	sinks := events.Multi{events.LogSink{Logger: log}}

	if cfg.Events.RedisAddr != "" {
		stream, err := events.NewRedisStreamSink(events.RedisStreamConfig{
			Addr:     cfg.Events.RedisAddr,
			Password: cfg.Events.RedisPassword,
			DB:       cfg.Events.RedisDB,
			Stream:   cfg.Events.Stream,
			MaxLen:   cfg.Events.MaxLen,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("event stream: %w", err)
		}
		s.closers = append(s.closers, stream.Close)
		sinks = append(sinks, stream)
		log.Info("publishing collection events to redis", "addr", cfg.Events.RedisAddr, "stream", cfg.Events.Stream)
	}

	catalogStore := database.NewCatalogStore(db.DB)

	if cfg.Tasks.Enabled {
		tasksPath := cfg.Tasks.DatabasePath
		if tasksPath == "" {
			tasksPath = tasks.DatabasePath(cfg.Database.Path)
		}
		s.Tasks, err = tasks.NewClient(tasksPath, tasks.FromConfig(cfg.Tasks), log)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("task queue: %w", err)
		}
		s.closers = append(s.closers, s.Tasks.Close)
		if s.Covers != nil {
			sinks = append(sinks, events.TaskSink{Enqueuer: s.Tasks})
		}
	}

	provider := lookup.NewOpenLibraryClient(lookup.Options{
		BaseURL:           cfg.Lookup.BaseURL,
		CoversBaseURL:     cfg.Lookup.CoversBaseURL,
		UserAgent:         cfg.Lookup.UserAgent,
		Timeout:           cfg.Lookup.Timeout,
		RequestsPerSecond: cfg.Lookup.RequestsPerSecond,
		MaxRetries:        cfg.Lookup.MaxRetries,
	})

	s.Catalog = catalog.NewService(catalogStore, provider, sinks, log, catalog.Options{
		DefaultEditionName: cfg.Catalog.DefaultEditionName,
		DefaultLanguage:    cfg.Catalog.DefaultLanguage,
		UnknownSeriesTitle: cfg.Catalog.UnknownSeriesTitle,
	})

	s.LoanStore = database.NewLoanStore(db.DB)
	s.Loans = loans.NewEngine(s.LoanStore, log)

	if s.Tasks != nil {
		queues := []backlite.Queue{tasks.NewCleanupAuditEventsQueue(s.Audit, log)}
		if s.Covers != nil {
			queues = append(queues, tasks.NewCacheCoverQueue(s.Catalog, s.Covers, log))
		}
		s.Tasks.Register(queues...)
	}

	return s, nil
}

// Close releases resources in reverse order of acquisition.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
