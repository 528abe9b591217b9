package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/Ramsey-B/clover/config"
	blockrulerepo "github.com/Ramsey-B/clover/internal/repositories/blockrule"
	leadrepo "github.com/Ramsey-B/clover/internal/repositories/lead"
	verdictrepo "github.com/Ramsey-B/clover/internal/repositories/verdict"
	"github.com/Ramsey-B/clover/pkg/crm"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/decision"
	"github.com/Ramsey-B/clover/pkg/directory"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/middleware"
	"github.com/Ramsey-B/clover/pkg/processor"
	"github.com/Ramsey-B/clover/pkg/retry"
	blockruleroutes "github.com/Ramsey-B/clover/pkg/routes/blockrule"
	checkroutes "github.com/Ramsey-B/clover/pkg/routes/check"
	"github.com/Ramsey-B/clover/pkg/routes/health"
	leadroutes "github.com/Ramsey-B/clover/pkg/routes/lead"
	verdictroutes "github.com/Ramsey-B/clover/pkg/routes/verdict"
	"github.com/Ramsey-B/clover/pkg/startup"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	log := logger.WithField("app", cfg.AppName)

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	tracing.SetTracer(tp.Tracer(cfg.AppName))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Database
	db, err := connectDatabase(cfg)
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := runMigrations(cfg, logger, db); err != nil {
		log.WithError(err).Error("Failed to run migrations")
		os.Exit(1)
	}

	dbInstance := database.NewDatabaseInstance(db, logger)

	// Repositories
	leadRepository := leadrepo.NewRepository(dbInstance, logger)
	verdictRepository := verdictrepo.NewRepository(dbInstance, logger)
	ruleRepository := blockrulerepo.NewRepository(dbInstance, logger)

	// Outbound clients
	crmClient := crm.NewClient(crm.Config{
		BaseURL:   cfg.CRMBaseURL,
		Token:     cfg.CRMToken,
		SearchRPS: cfg.CRMSearchRPS,
		Timeout:   time.Duration(cfg.CRMTimeoutSeconds) * time.Second,
	}, logger)

	var directorySearcher decision.DirectorySearcher
	if cfg.DirectoryCheckEnabled {
		directorySearcher = directory.NewClient(directory.Config{
			BaseURL: cfg.DirectoryBaseURL,
			APIKey:  cfg.DirectoryAPIKey,
			Timeout: time.Duration(cfg.DirectoryTimeoutSeconds) * time.Second,
		}, logger)
	}

	// Kafka producer + event emitter
	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaOutputTopic,
		BatchSize:    cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: cfg.KafkaRequiredAcks,
		Compression:  cfg.KafkaCompression,
	}, logger)
	defer producer.Close()

	emitter := events.NewEmitter(producer, logger)

	// Lead check pipeline
	proc := processor.NewProcessor(
		logger,
		leadRepository,
		verdictRepository,
		ruleRepository,
		emitter,
		retry.NewMemoryLedger(cfg.LeadMaxAttempts),
		processor.Collaborators{
			Contacts:  crmClient,
			Searcher:  crmClient,
			Assoc:     crmClient,
			Directory: directorySearcher,
		},
		engineConfig(cfg),
		decisionConfig(cfg),
		cfg.LeadWorkerCount,
	)

	// Kafka consumer
	var consumer *kafka.Consumer
	if cfg.KafkaConsumerEnabled {
		consumer = kafka.NewConsumer(cfg, logger, proc.ProcessMessage)
	}

	// Dependency injection for route handlers
	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		log.WithError(err).Error("Failed to create DI container")
		os.Exit(1)
	}
	ectoinject.RegisterInstance[ectologger.Logger](container, logger)
	ectoinject.RegisterInstance[database.DB](container, dbInstance)
	ectoinject.RegisterInstance[*leadrepo.Repository](container, leadRepository)
	ectoinject.RegisterInstance[*verdictrepo.Repository](container, verdictRepository)
	ectoinject.RegisterInstance[*blockrulerepo.Repository](container, ruleRepository)
	ectoinject.RegisterInstance[*processor.Processor](container, proc)

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.HTTPErrorHandler = middleware.Error(logger)

	var consumerHealth health.Consumer
	if consumer != nil {
		consumerHealth = consumer
	}
	healthChecker := health.NewChecker(db, consumerHealth, version)
	healthChecker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	checkroutes.Register(api.Group("/leads/check"))
	leadroutes.Register(api.Group("/leads"))
	verdictroutes.Register(api.Group("/verdicts"))
	blockruleroutes.Register(api.Group("/block-rules"))

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	// Startup orchestration
	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	if consumer != nil {
		boot.AddDependency(&consumerDependency{consumer: consumer})
	}
	boot.AddDependency(&httpDependency{e: e, port: cfg.Port, logger: logger})

	if err := boot.Start(ctx); err != nil {
		log.WithError(err).Error("Startup failed")
		os.Exit(1)
	}
	healthChecker.SetReady(true)

	log.WithFields(map[string]any{"port": cfg.Port}).Info("Service started")

	<-ctx.Done()
	log.Info("Shutting down")
	healthChecker.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := boot.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Shutdown finished with errors")
	}
}

func newLogger(cfg config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		zapLogger = zap.NewNop()
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func connectDatabase(cfg config.Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName,
		cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode,
	)

	db, err := sqlx.Connect(cfg.DatabaseDriver, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)
	return db, nil
}

func runMigrations(cfg config.Config, logger ectologger.Logger, db *sqlx.DB) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return err
	}

	svc := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	return svc.Migrate(cfg.DatabaseName, driver)
}

func engineConfig(cfg config.Config) matching.Config {
	ec := matching.DefaultConfig()
	ec.CombinedAccept = cfg.MatchCombinedAccept
	ec.StrongName = cfg.MatchStrongName
	ec.MediumNameLow = cfg.MatchMediumNameLow
	ec.EnableMediumBand = cfg.MatchMediumBand
	ec.ShortNameExact = cfg.MatchShortNameExact
	ec.NameWeight = cfg.MatchNameWeight
	ec.CityBonus = cfg.MatchCityBonus
	ec.CountryBonus = cfg.MatchCountryBonus
	if cfg.MatchAggregate == "max" {
		ec.Aggregate = matching.AggregateMax
	}
	if cfg.MatchLocationPolicy == "disjunctive" {
		ec.Location = matching.PolicyDisjunctive
	}
	return ec
}

func decisionConfig(cfg config.Config) decision.Config {
	dc := decision.DefaultConfig()
	dc.QueryTokens = cfg.MatchQueryTokens
	dc.SearchLimit = cfg.MatchSearchLimit
	dc.DirectoryThreshold = cfg.MatchDirectoryMinimum
	dc.ExtendedTrail = cfg.MatchExtendedTrail
	return dc
}

// consumerDependency adapts the Kafka consumer to the startup sequence
type consumerDependency struct {
	consumer *kafka.Consumer
}

func (d *consumerDependency) Name() string { return "kafka-consumer" }

func (d *consumerDependency) Start(ctx context.Context) error {
	return d.consumer.Start(ctx)
}

func (d *consumerDependency) Stop(ctx context.Context) error {
	return d.consumer.Stop()
}

// httpDependency adapts the echo server to the startup sequence
type httpDependency struct {
	e      *echo.Echo
	port   int
	logger ectologger.Logger
}

func (d *httpDependency) Name() string { return "http-server" }

func (d *httpDependency) Start(ctx context.Context) error {
	go func() {
		if err := d.e.Start(fmt.Sprintf(":%d", d.port)); err != nil && err != http.ErrServerClosed {
			d.logger.WithError(err).Error("HTTP server stopped")
		}
	}()
	return nil
}

func (d *httpDependency) Stop(ctx context.Context) error {
	return d.e.Shutdown(ctx)
}
