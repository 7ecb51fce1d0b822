// internal/database/connection.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/placement-backend/internal/config"
	"github.com/javajoker/placement-backend/internal/models"
)

// Names of the unique indexes that back the engine's exclusion rules.
const (
	IndexCurrentApplication = "uq_applications_current_student"
	IndexPendingInterview   = "uq_interviews_pending_application"
	IndexActiveStudent      = "uq_assignments_active_student"
	IndexActiveFaculty      = "uq_assignments_active_faculty"
	IndexActiveTitle        = "uq_assignments_active_title"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established successfully")
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	default:
		return logger.Info
	}
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed successfully")
	}
}

// RunMigrations creates the schema. exclusiveFaculty controls whether a
// faculty member may hold more than one active assignment.
func RunMigrations(db *gorm.DB, exclusiveFaculty bool) error {
	logrus.Info("Running database migrations...")

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\"").Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.Member{},
		&models.Project{},
		&models.Application{},
		&models.Interview{},
		&models.Assignment{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createConstraints(db, exclusiveFaculty); err != nil {
		return fmt.Errorf("failed to create constraints: %w", err)
	}
	createIndexes(db)

	logrus.Info("Database migrations completed successfully")
	return nil
}

func createConstraints(db *gorm.DB, exclusiveFaculty bool) error {
	constraints := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS " + IndexCurrentApplication +
			" ON applications(student_id) WHERE superseded_at IS NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS " + IndexPendingInterview +
			" ON interviews(application_id) WHERE result = 'pending'",
		"CREATE UNIQUE INDEX IF NOT EXISTS " + IndexActiveStudent +
			" ON assignments(student_id) WHERE status = 'active'",
		"CREATE UNIQUE INDEX IF NOT EXISTS " + IndexActiveTitle +
			" ON assignments(project_title_key) WHERE status = 'active'",
	}

	if exclusiveFaculty {
		constraints = append(constraints, "CREATE UNIQUE INDEX IF NOT EXISTS "+IndexActiveFaculty+
			" ON assignments(faculty_id) WHERE status = 'active'")
	} else {
		constraints = append(constraints, "DROP INDEX IF EXISTS "+IndexActiveFaculty)
	}

	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

func createIndexes(db *gorm.DB) {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_applications_hod_status ON applications(assigned_hod, status)",
		"CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_interviews_hod_scheduled ON interviews(hod_id, scheduled_at)",
		"CREATE INDEX IF NOT EXISTS idx_assignments_faculty_status ON assignments(faculty_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_assignments_student_created ON assignments(student_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_projects_department_active ON projects(department, active)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Lookup indexes only affect performance.
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
		}
	}
}

// WithTransaction runs fn inside a database transaction bound to ctx.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
