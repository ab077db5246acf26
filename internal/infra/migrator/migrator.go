// Package migrator applies the versioned schema steps and gates store traffic
// until the database schema is current.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"usersvc/config"
	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/errors"
	"usersvc/internal/infra/persistence/migrations"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
	"go.uber.org/fx"
)

// Provider is the subset of *goose.Provider the migrator drives.
type Provider interface {
	Up(ctx context.Context) ([]*goose.MigrationResult, error)
	DownTo(ctx context.Context, version int64) ([]*goose.MigrationResult, error)
	GetDBVersion(ctx context.Context) (int64, error)
	ListSources() []*goose.Source
	Status(ctx context.Context) ([]*goose.MigrationStatus, error)
}

// StepStatus is the applied state of one migration step.
type StepStatus struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

// Migrator runs migration steps in version order, one transaction per step.
// The current version marker is goose's version table, so every process
// observes the same value.
type Migrator struct {
	provider Provider
	latest   int64
	ready    atomic.Bool
	logger   *slog.Logger
}

// Params defines the dependencies for the PostgreSQL migrator.
type Params struct {
	fx.In

	DB     *sql.DB
	Config *config.Config
	Logger *slog.Logger
}

// NewPostgres builds a migrator over the embedded SQL steps. A PostgreSQL
// advisory lock serializes runs across processes; waiters see nothing pending
// once they acquire it.
func NewPostgres(params Params) (*Migrator, error) {
	retryPeriod, threshold := uint64(5), uint64(60)
	if mc := params.Config.Migrations; mc != nil {
		if mc.LockRetryPeriod > 0 {
			retryPeriod = uint64(math.Ceil(mc.LockRetryPeriod.Seconds()))
		}
		if mc.LockFailureThreshold > 0 {
			threshold = mc.LockFailureThreshold
		}
	}

	locker, err := lock.NewPostgresSessionLocker(lock.WithLockTimeout(retryPeriod, threshold))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create migration session locker")
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, params.DB, migrations.FS(),
		goose.WithSessionLocker(locker),
	)
	if err != nil {
		// goose rejects duplicate versions while collecting sources.
		return nil, errors.Wrap(domainerrors.ErrMigrationConfig.WithDetails(err.Error()), "failed to create migration provider")
	}

	return New(provider, params.Logger)
}

// New validates the step list and returns a migrator. Versions must start at 1
// and be contiguous; a gap or duplicate is a configuration error.
func New(provider Provider, logger *slog.Logger) (*Migrator, error) {
	latest, err := validateSources(provider.ListSources())
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Migrator{
		provider: provider,
		latest:   latest,
		logger:   logger,
	}, nil
}

func validateSources(sources []*goose.Source) (int64, error) {
	if len(sources) == 0 {
		return 0, domainerrors.ErrMigrationConfig.WithDetails("no migration steps found")
	}

	var prev int64
	for _, src := range sources {
		switch {
		case src.Version == prev:
			return 0, domainerrors.ErrMigrationConfig.WithDetails(fmt.Sprintf("duplicate migration version %d", src.Version))
		case src.Version != prev+1:
			return 0, domainerrors.ErrMigrationConfig.WithDetails(fmt.Sprintf("migration versions must be contiguous: expected %d, found %d", prev+1, src.Version))
		}
		prev = src.Version
	}

	return prev, nil
}

// Latest returns the highest configured step version.
func (m *Migrator) Latest() int64 {
	return m.latest
}

// Version returns the persisted schema version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	v, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read schema version")
	}

	return v, nil
}

// MigrateToLatest applies every pending step in ascending order. On failure of
// step k the steps before it stay committed and the error is a
// *MigrationFailedError with AtVersion k. It is never retried here.
func (m *Migrator) MigrateToLatest(ctx context.Context) error {
	before, err := m.Version(ctx)
	if err != nil {
		return domainerrors.NewMigrationFailedError(1, err)
	}

	results, err := m.provider.Up(ctx)
	m.logResults(ctx, results)
	if err != nil {
		failed := m.failedVersion(err, before+1)
		m.ready.Store(false)
		m.logger.ErrorContext(ctx, "Schema migration failed",
			slog.Int64("atVersion", failed),
			slog.Int64("fromVersion", before),
			slog.Any("error", err),
		)

		return domainerrors.NewMigrationFailedError(failed, errors.Cause(err))
	}

	after, err := m.Version(ctx)
	if err != nil {
		return domainerrors.NewMigrationFailedError(before+1, err)
	}
	if after != m.latest {
		return domainerrors.NewMigrationFailedError(after+1, errors.Errorf("schema at version %d after run, want %d", after, m.latest))
	}

	m.ready.Store(true)
	m.logger.InfoContext(ctx, "Schema is current",
		slog.Int64("fromVersion", before),
		slog.Int64("version", after),
		slog.Int("applied", len(results)),
	)

	return nil
}

// RevertTo reverts every step above version in descending order.
func (m *Migrator) RevertTo(ctx context.Context, version int64) error {
	if version < 0 || version > m.latest {
		return domainerrors.ErrMigrationConfig.WithDetails(fmt.Sprintf("revert target %d outside [0, %d]", version, m.latest))
	}

	m.ready.Store(false)

	results, err := m.provider.DownTo(ctx, version)
	m.logResults(ctx, results)
	if err != nil {
		current, verr := m.Version(ctx)
		if verr != nil {
			current = m.latest
		}
		failed := m.failedVersion(err, current)

		return domainerrors.NewMigrationFailedError(failed, errors.Cause(err))
	}

	m.logger.InfoContext(ctx, "Schema reverted", slog.Int64("version", version), slog.Int("reverted", len(results)))

	return nil
}

// Ready implements service.SchemaGate.
func (m *Migrator) Ready(ctx context.Context) error {
	if m.ready.Load() {
		return nil
	}

	v, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return errors.Wrap(domainerrors.ErrSchemaNotReady, err.Error())
	}
	if v != m.latest {
		return domainerrors.ErrSchemaNotReady.WithDetails(fmt.Sprintf("schema version %d, want %d", v, m.latest))
	}

	m.ready.Store(true)

	return nil
}

// Invalidate drops the cached readiness. The store calls it when a statement
// finds the schema missing, so the next Ready re-reads the version table.
func (m *Migrator) Invalidate() {
	if m.ready.Swap(false) {
		m.logger.Warn("Schema no longer current, store traffic gated until it is")
	}
}

// Status lists every step with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]StepStatus, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migration status")
	}

	out := make([]StepStatus, 0, len(statuses))
	for _, s := range statuses {
		if s == nil || s.Source == nil {
			continue
		}
		out = append(out, StepStatus{
			Version:   s.Source.Version,
			Path:      s.Source.Path,
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		})
	}

	return out, nil
}

func (m *Migrator) failedVersion(err error, fallback int64) int64 {
	var partial *goose.PartialError
	if errors.As(err, &partial) && partial.Failed != nil && partial.Failed.Source != nil {
		return partial.Failed.Source.Version
	}

	return fallback
}

func (m *Migrator) logResults(ctx context.Context, results []*goose.MigrationResult) {
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		m.logger.InfoContext(ctx, "Migration step applied",
			slog.Int64("version", r.Source.Version),
			slog.String("direction", r.Direction),
			slog.Duration("duration", r.Duration),
		)
	}
}
