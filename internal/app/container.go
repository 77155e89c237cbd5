package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/jobs"
	"github.com/Olprog59/go-prodtrack/internal/metrics"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
	"github.com/Olprog59/go-prodtrack/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container holds application dependencies / Contient les dépendances de l'application
type Container struct {
	DB       *sql.DB
	Config   *config.Config
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	UserRepo          ports.UserRepository
	RefreshTokenStore ports.RefreshTokenStore

	AuthSvc          *service.AuthService
	UserSvc          *service.UserService
	ProductSvc       *service.ProductService
	SemaineSvc       *service.SemaineService
	PlanificationSvc *service.PlanificationService
	NonConformiteSvc *service.NonConformiteService
	CommentaireSvc   *service.CommentaireService
	OuvrierSvc       *service.OuvrierService
	SelectionSvc     *service.SelectionService
	RapportSvc       *service.RapportService
	StatsSvc         *service.StatsService
	ActivitySvc      *service.ActivityService

	Scheduler *jobs.Scheduler
}

// NewContainer initializes application container / Initialise le conteneur de l'application
// It opens the database, applies the embedded migrations, wires every
// service, creates the bootstrap admin and starts the scheduled jobs.
func NewContainer(cfg *config.Config) (*Container, error) {
	database, err := openDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}

	if err := db.RunMigrations(database, databaseType(cfg)); err != nil {
		database.Close() // Ensure database connection is closed on migration failure
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := NewContainerWithDB(cfg, database, metrics.NewMetrics(reg))
	c.Registry = reg

	if err := c.UserSvc.EnsureBootstrapAdmin(context.Background(), cfg.Bootstrap); err != nil {
		c.Close()
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	if err := c.initJobs(); err != nil {
		c.Close()
		return nil, fmt.Errorf("jobs init: %w", err)
	}

	c.UpdateDatabaseMetrics()
	return c, nil
}

// NewContainerWithDB wires repositories and services over an already migrated
// database. No job is scheduled.
func NewContainerWithDB(cfg *config.Config, database *sql.DB, m *metrics.Metrics) *Container {
	c := &Container{DB: database, Config: cfg, Metrics: m}
	c.initServices(repository.NewAdapter(database, databaseType(cfg).String()))
	return c
}

func databaseType(cfg *config.Config) db.DatabaseType {
	return db.ParseDatabaseType(cfg.Database.Type)
}

// openDatabase initializes database connection / Initialise la connexion à la base de données
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	dbType := databaseType(cfg)

	// Use Factory Pattern to create appropriate initializer
	database, err := db.NewDatabaseInitializer(dbType).Initialize(db.DatabaseConfig{
		Type:         dbType,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database: %w", dbType, err)
	}
	return database, nil
}

// initServices initializes application services / Initialise les services applicatifs
func (c *Container) initServices(adapter *repository.Adapter) {
	c.UserRepo = adapter.UserRepository()
	c.RefreshTokenStore = adapter.RefreshTokenStore()

	products := adapter.ProductRepository()
	semaines := adapter.SemaineRepository()
	plans := adapter.PlanificationRepository()
	ncs := adapter.NonConformiteRepository()
	commentaires := adapter.CommentaireRepository()
	ouvriers := adapter.OuvrierRepository()
	statuts := adapter.StatutOuvrierRepository()
	selections := adapter.SelectionRepository()
	rapports := adapter.RapportRepository()

	c.AuthSvc = service.NewAuthService(c.UserRepo, c.RefreshTokenStore, c.Config, c.DB, c.Metrics)
	c.UserSvc = service.NewUserService(c.UserRepo, c.RefreshTokenStore, c.Config, c.Metrics)
	c.ProductSvc = service.NewProductService(products)
	c.SemaineSvc = service.NewSemaineService(semaines, plans, selections, rapports)
	c.PlanificationSvc = service.NewPlanificationService(c.DB, plans, ncs, semaines, products, c.Config, c.Metrics)
	c.NonConformiteSvc = service.NewNonConformiteService(c.DB, ncs, commentaires, c.Config, c.Metrics)
	c.CommentaireSvc = service.NewCommentaireService(commentaires)
	c.OuvrierSvc = service.NewOuvrierService(ouvriers, statuts)
	c.SelectionSvc = service.NewSelectionService(c.DB, selections, plans, semaines, ouvriers, statuts, c.Config)
	c.RapportSvc = service.NewRapportService(rapports, semaines, ouvriers, c.Config)
	c.StatsSvc = service.NewStatsService(semaines, plans, ncs, statuts, c.Metrics)
	c.ActivitySvc = service.NewActivityService(adapter.ActivityRepository())

	slog.Info("services initialized", "database", databaseType(c.Config))
}

// initJobs registers the cron jobs and starts the scheduler.
// An empty schedule disables the job.
func (c *Container) initJobs() error {
	c.Scheduler = jobs.NewScheduler(c.Metrics)
	jc := c.Config.Jobs

	if jc.TokenPurgeSchedule != "" {
		if err := c.Scheduler.Add(jobs.TokenPurgeJob, jc.TokenPurgeSchedule, jobs.TokenPurge(c.AuthSvc)); err != nil {
			return err
		}
	}
	if jc.ActivityPurgeSchedule != "" {
		purge := jobs.ActivityPurge(c.ActivitySvc, jc.ActivityRetention)
		if err := c.Scheduler.Add(jobs.ActivityPurgeJob, jc.ActivityPurgeSchedule, purge); err != nil {
			return err
		}
	}
	if err := c.initBackup(); err != nil {
		return err
	}

	c.Scheduler.Start()
	slog.Info("scheduler started", "jobs", c.Scheduler.Jobs())
	return nil
}

// initBackup schedules the sqlite backup / Planifie la sauvegarde sqlite
// MySQL deployments rely on their own dump tooling, the flag is ignored there.
func (c *Container) initBackup() error {
	bc := c.Config.Backup
	if !bc.Enabled {
		return nil
	}
	if databaseType(c.Config) != db.SQLite {
		slog.Warn("database backup disabled", "reason", jobs.ErrBackupUnsupported)
		return nil
	}
	backup, err := jobs.NewBackup(c.DB, c.Config.Database.DSN, bc.Path, bc.RetentionDays)
	if errors.Is(err, jobs.ErrBackupUnsupported) {
		slog.Warn("database backup disabled", "reason", err)
		return nil
	}
	if err != nil {
		return err
	}
	return c.Scheduler.Add(jobs.BackupJob, bc.Schedule, backup.Run)
}

// UpdateDatabaseMetrics updates database metrics / Met à jour les métriques de la BD
func (c *Container) UpdateDatabaseMetrics() {
	stats := c.DB.Stats()
	c.Metrics.UpdateDatabaseConnections(stats.OpenConnections)
}

// Close performs graceful shutdown / Effectue un arrêt gracieux
func (c *Container) Close() error {
	if c.Scheduler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), jobs.DefaultTimeout)
		defer cancel()
		if err := c.Scheduler.Stop(ctx); err != nil {
			slog.Warn("scheduler did not stop cleanly", "err", err)
		}
	}
	if c.DB != nil {
		slog.Info("closing database")
		return c.DB.Close()
	}
	return nil
}
