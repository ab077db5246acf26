package main

import (
	"context"
	"log/slog"
	"os"

	"usersvc/config"
	"usersvc/internal/delivery"
	"usersvc/internal/delivery/api"
	"usersvc/internal/delivery/api/middleware"
	"usersvc/internal/delivery/api/router/handler"
	"usersvc/internal/domain/lifecycle"
	"usersvc/internal/domain/service"
	"usersvc/internal/infra/auth"
	logs "usersvc/internal/infra/log"
	"usersvc/internal/infra/migrator"
	"usersvc/internal/infra/persistence/memory"
	"usersvc/internal/infra/persistence/postgres"
	"usersvc/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Logger     *slog.Logger
	Deliveries []delivery.Delivery `group:"deliveries"`
}

type migrationParams struct {
	fx.In
	fx.Lifecycle

	Config   *config.Config
	Migrator *migrator.Migrator
	Logger   *slog.Logger
}

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	fx.New(
		fx.Supply(cfg),
		fx.StartTimeout(lifecycle.MigrationTimeout),
		injectInfra(),
		injectStorage(cfg),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		logs.New,
		context.Background,
	)
}

// injectStorage selects the account store. The postgres backend also wires
// the migrator, which runs before any delivery starts.
func injectStorage(cfg *config.Config) fx.Option {
	if cfg.Storage.Backend == config.BackendMemory {
		return fx.Provide(
			memory.NewSchemaGate,
			memory.NewAccountRepository,
		)
	}

	return fx.Options(
		fx.Provide(
			postgres.New,
			postgres.NewSQLDB,
			migrator.NewPostgres,
			newSchemaGate,
			postgres.NewAccountRepository,
		),
		fx.Invoke(
			migrateOnStart,
		),
	)
}

func newSchemaGate(m *migrator.Migrator) service.SchemaGate {
	return m
}

// migrateOnStart brings the schema to the latest version, or with autoMigrate
// off refuses to start against an outdated schema.
func migrateOnStart(params migrationParams) {
	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if params.Config.Migrations != nil && !params.Config.Migrations.AutoMigrate {
				return params.Migrator.Ready(ctx)
			}

			params.Logger.Info("Migrating schema", slog.Int64("latest", params.Migrator.Latest()))

			return params.Migrator.MigrateToLatest(ctx)
		},
	})
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewArgon2Hasher,
			auth.NewJWTService,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAccountService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAccountHandler,
			handler.NewAdminHandler,
			handler.NewHealthHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// startServer launches every delivery once all earlier OnStart hooks,
// including the migration, have succeeded.
func startServer(ctx context.Context, params startServerParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, d := range params.Deliveries {
				go func() {
					if err := d.Serve(ctx); err != nil {
						params.Logger.Error("Failed to start server", slog.Any("error", err))
						_ = params.Shutdown(fx.ExitCode(1))
					}
				}()
			}

			return nil
		},
	})
}
