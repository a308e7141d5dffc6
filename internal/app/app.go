package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rfid-bridge/internal/config"
	"rfid-bridge/internal/model"
	"rfid-bridge/internal/msg/router"
	"rfid-bridge/internal/repository"
	"rfid-bridge/internal/service"
	"rfid-bridge/pkg/mqtt"
	"rfid-bridge/pkg/postgres"
)

type App struct {
	Cfg     *config.Config
	Log     *zap.Logger
	DB      postgres.Postgres
	Broker  *mqtt.Client
	Service *service.ToggleService
	Router  *router.Router
}

// New wires the process. The store comes up first and fails the whole
// process when unreachable; the broker connection is useless without it.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := initDB(&cfg.Database)
	if err != nil {
		log.Error("Failed to initialize database", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	log.Debug("Database initialized")

	broker, err := initBroker(&cfg.Broker)
	if err != nil {
		db.Close()
		log.Error("Failed to initialize broker", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize broker: %w", err)
	}

	log.Debug("Broker initialized")

	labels := model.StatusLabels{
		Available: cfg.Status.AvailableLabel,
		Loaned:    cfg.Status.LoanedLabel,
	}

	itemRepo := repository.NewItemRepository(db.Pool(), labels)
	auditRepo := repository.NewAuditRepository(db.Pool())
	log.Debug("Repositories initialized")

	svc := service.NewToggleService(log, db.Pool(), itemRepo, auditRepo, labels)
	log.Debug("Toggle service initialized")

	rtr := router.NewRouter(log, router.Config{
		ScanTopic:     cfg.Topics.Scan,
		ResponseTopic: cfg.Topics.Response,
		AlertTopic:    cfg.Topics.Alert,
		AlertKeys:     cfg.Topics.AlertKeys,
	}, broker, broker, svc)

	return &App{
		Cfg:     cfg,
		Log:     log,
		DB:      db,
		Broker:  broker,
		Service: svc,
		Router:  rtr,
	}, nil
}

func MustNew(cfg *config.Config, log *zap.Logger) *App {
	app, err := New(cfg, log)
	if err != nil {
		panic(err)
	}

	return app
}

func (a *App) Run(ctx context.Context) error {
	if err := a.Router.Run(ctx); err != nil {
		return fmt.Errorf("failed to run router: %w", err)
	}

	return nil
}

// Shutdown releases the broker connection first and always closes the store
// pool, whatever path led here.
func (a *App) Shutdown() error {
	a.Broker.Close()
	a.Log.Debug("Broker connection closed")

	a.DB.Close()
	a.Log.Debug("Database closed")

	return nil
}

func initDB(cfg *config.Database) (postgres.Postgres, error) {
	return postgres.New(&postgres.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Name:     cfg.Name,
		SSLMode:  cfg.SSLMode,
		MaxConns: cfg.MaxConns,
		MinConns: cfg.MinConns,
	})
}

func initBroker(cfg *config.Broker) (*mqtt.Client, error) {
	return mqtt.New(&mqtt.Config{
		BrokerURL:      cfg.URL,
		ClientID:       cfg.ClientID,
		Username:       cfg.Username,
		Password:       cfg.Password,
		ConnectTimeout: cfg.ConnectTimeout,
	}, byte(cfg.QoS))
}
