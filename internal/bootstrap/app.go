package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"

	appsvc "profilehub/internal/app"
	"profilehub/internal/config"
	"profilehub/internal/logging"
	"profilehub/internal/pkg/gravatar"
	mongoClient "profilehub/internal/platform/mongo"
	mysqlClient "profilehub/internal/platform/mysql"
	rabbitmqClient "profilehub/internal/platform/rabbitmq"
	"profilehub/internal/repository"
	"profilehub/internal/worker"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger

	Users   repository.UserRepository
	Mongo   *mongo.Client
	MySQL   *gorm.DB
	Avatars *gravatar.Client

	MQConn         *amqp.Connection
	Publisher      appsvc.EventPublisher
	GravatarWorker *worker.GravatarWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	app := &App{
		Config:    cfg,
		Logger:    logging.New(os.Stdout, cfg.App.Env, cfg.App.LogLevel),
		Avatars:   gravatar.NewClient(cfg.Gravatar.BaseURL, time.Duration(cfg.Gravatar.ProbeTimeoutSeconds)*time.Second),
		Publisher: appsvc.NopPublisher{},
		StartedAt: time.Now(),
	}

	if err := app.openStore(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	if err := app.openEvents(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Logger.Info("bootstrap complete",
		"storage", cfg.Storage.Driver,
		"events", cfg.EventsEnabled(),
	)
	return app, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.Storage.Driver {
	case config.StorageMongo:
		client, err := mongoClient.New(ctx, a.Config.Mongo.URI)
		if err != nil {
			return err
		}
		a.Mongo = client
		repo := repository.NewMongoUserRepository(client, a.Config.Mongo.Database, a.Config.Mongo.Collection)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		a.Users = repo
	case config.StorageMySQL:
		db, err := mysqlClient.New(ctx, a.Config.MySQLDSN())
		if err != nil {
			return err
		}
		a.MySQL = db
		repo := repository.NewGormUserRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
		a.Users = repo
	case config.StorageMemory:
		a.Logger.Warn("using in-memory user store; data is lost on restart")
		a.Users = repository.NewMemoryUserRepository()
	default:
		return fmt.Errorf("unknown storage driver %q", a.Config.Storage.Driver)
	}
	return nil
}

func (a *App) openEvents(ctx context.Context) error {
	if !a.Config.EventsEnabled() {
		return nil
	}

	conn, err := rabbitmqClient.New(ctx, a.Config.RabbitMQ.URL, a.Config.App.Name)
	if err != nil {
		return err
	}
	a.MQConn = conn
	a.Publisher = rabbitmqClient.NewEventPublisher(conn, a.Config.RabbitMQ.UserEventsExchange)

	a.GravatarWorker = worker.NewGravatarWorker(
		conn,
		a.Users,
		a.Avatars,
		a.Config.RabbitMQ.UserEventsExchange,
		a.Config.RabbitMQ.GravatarQueue,
		a.Logger,
	)
	if err := a.GravatarWorker.Start(ctx); err != nil {
		return fmt.Errorf("start gravatar worker failed: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	var closeErr error
	if a.GravatarWorker != nil {
		a.GravatarWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Mongo.Disconnect(ctx); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		if err := mysqlClient.Close(a.MySQL); err != nil {
			closeErr = err
		}
	}
	return closeErr
}
