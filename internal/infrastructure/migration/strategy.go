package migration

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/storedesk/storedesk/internal/infrastructure/persistence/models"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

//go:embed scripts
var scripts embed.FS

// Strategy brings the remote schema up to date.
type Strategy interface {
	Migrate(ctx context.Context, db *gorm.DB) error
	GetName() string
}

// MigrationStatus is one line of `migrate status`.
type MigrationStatus struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

// GooseStrategy applies the versioned SQL scripts embedded for the driver.
type GooseStrategy struct {
	dialect goose.Dialect
	fsys    fs.FS
	logger  logger.Interface
}

func NewGooseStrategy(driver string, log logger.Interface) (*GooseStrategy, error) {
	var dialect goose.Dialect
	var dir string
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "":
		dialect, dir = goose.DialectPostgres, "scripts/postgres"
	case "mysql":
		dialect, dir = goose.DialectMySQL, "scripts/mysql"
	case "sqlite":
		dialect, dir = goose.DialectSQLite3, "scripts/sqlite"
	default:
		return nil, fmt.Errorf("no migration scripts for driver %q", driver)
	}

	sub, err := fs.Sub(scripts, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration scripts: %w", err)
	}

	return &GooseStrategy{
		dialect: dialect,
		fsys:    sub,
		logger:  log.With("component", "migration.goose"),
	}, nil
}

func (s *GooseStrategy) GetName() string {
	return "goose"
}

// provider is not closed: goose would close the shared *sql.DB with it.
func (s *GooseStrategy) provider(db *gorm.DB) (*goose.Provider, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	p, err := goose.NewProvider(s.dialect, sqlDB, s.fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create goose provider: %w", err)
	}
	return p, nil
}

func (s *GooseStrategy) Migrate(ctx context.Context, db *gorm.DB) error {
	p, err := s.provider(db)
	if err != nil {
		return err
	}

	from, err := p.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	s.logger.Infow("starting goose migration", "dialect", s.dialect, "version", from)

	results, err := p.Up(ctx)
	if err != nil {
		s.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Infow("applied migration", "version", r.Source.Version, "duration", r.Duration)
	}

	to, err := p.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get final version: %w", err)
	}
	s.logger.Infow("migration completed successfully", "from_version", from, "to_version", to)
	return nil
}

// MigrateDown rolls back steps migrations. Stops early, without error,
// when nothing is left to roll back.
func (s *GooseStrategy) MigrateDown(ctx context.Context, db *gorm.DB, steps int) error {
	p, err := s.provider(db)
	if err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		current, err := p.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current version: %w", err)
		}
		if current == 0 {
			break
		}
		r, err := p.Down(ctx)
		if err != nil {
			s.logger.Errorw("down migration failed", "error", err)
			return fmt.Errorf("failed to run down migration: %w", err)
		}
		s.logger.Infow("rolled back migration", "version", r.Source.Version)
	}
	return nil
}

func (s *GooseStrategy) GetVersion(ctx context.Context, db *gorm.DB) (int64, error) {
	p, err := s.provider(db)
	if err != nil {
		return 0, err
	}
	v, err := p.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return v, nil
}

func (s *GooseStrategy) Status(ctx context.Context, db *gorm.DB) ([]MigrationStatus, error) {
	p, err := s.provider(db)
	if err != nil {
		return nil, err
	}
	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	out := make([]MigrationStatus, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, MigrationStatus{
			Version:   st.Source.Version,
			Path:      st.Source.Path,
			Applied:   st.State == goose.StateApplied,
			AppliedAt: st.AppliedAt,
		})
	}
	return out, nil
}

// AutoMigrateStrategy creates tables straight from the gorm models. It is
// meant for throwaway sqlite stations and tests.
type AutoMigrateStrategy struct {
	logger logger.Interface
}

func NewAutoMigrateStrategy(log logger.Interface) *AutoMigrateStrategy {
	return &AutoMigrateStrategy{logger: log.With("component", "migration.automigrate")}
}

func (s *AutoMigrateStrategy) GetName() string {
	return "automigrate"
}

func (s *AutoMigrateStrategy) Migrate(ctx context.Context, db *gorm.DB) error {
	return AutoMigrate(db.WithContext(ctx))
}

// AutoMigrate creates every table the station uses except casbin_rule,
// which the policy adapter owns.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.EmployeeModel{},
		&models.EmployeeSessionModel{},
		&models.SaleModel{},
		&models.AppSettingModel{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	for _, table := range []string{
		models.TableProducts, models.TableCategories, models.TableMembers,
		models.TableCoupons, models.TableSuppliers,
	} {
		if err := db.Table(table).AutoMigrate(&models.ImportedRecordModel{}); err != nil {
			return fmt.Errorf("failed to auto migrate %s: %w", table, err)
		}
	}
	return nil
}
