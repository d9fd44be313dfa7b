package sql

import (
	"fmt"
	"os"
	"path/filepath"
	"skillchain/internal/config"
	"skillchain/internal/entity"
	"skillchain/internal/model"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DBTypeMySQL    = "mysql"
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"
)

// dialect opens one database flavour and tunes its pool.
type dialect struct {
	open         func(cfg *config.Config) (gorm.Dialector, error)
	maxOpenConns int
}

var dialects = map[string]dialect{
	DBTypeMySQL: {
		open: func(cfg *config.Config) (gorm.Dialector, error) {
			dsn := cfg.DSNURL
			if dsn == "" {
				dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
					cfg.DBUser, cfg.DBPassword, cfg.DBAddr, cfg.DBPort, cfg.DBName)
			}
			return mysql.Open(dsn), nil
		},
		maxOpenConns: 50,
	},
	DBTypePostgres: {
		open: func(cfg *config.Config) (gorm.Dialector, error) {
			dsn := cfg.DSNURL
			if dsn == "" {
				port := cfg.DBPort
				if port == "" || port == "3306" {
					port = "5432"
				}
				dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
					cfg.DBAddr, cfg.DBUser, cfg.DBPassword, cfg.DBName, port)
			}
			return postgres.Open(dsn), nil
		},
		maxOpenConns: 50,
	},
	// A single writer keeps SQLite from answering "database is locked" under concurrent requests.
	DBTypeSQLite: {
		open: func(cfg *config.Config) (gorm.Dialector, error) {
			path := cfg.DBPath
			if path == "" {
				path = "datas/skillchain.db"
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("create sqlite directory %q: %w", dir, err)
				}
			}
			return sqlite.Open(path + "?_busy_timeout=5000"), nil
		},
		maxOpenConns: 1,
	},
}

// InitRepository opens the database selected by cfg.DBType and migrates the schema.
func InitRepository(cfg *config.Config) (model.Repository, error) {
	dbType := strings.ToLower(strings.TrimSpace(cfg.DBType))
	d, ok := dialects[dbType]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %q", cfg.DBType)
	}
	dialector, err := d.open(cfg)
	if err != nil {
		return nil, err
	}
	db, err := openGormDB(dialector, d.maxOpenConns)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", dbType, err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate %s schema: %w", dbType, err)
	}
	logrus.WithField("db_type", dbType).Info("database ready")
	return NewGormRepository(db), nil
}

func openGormDB(dialector gorm.Dialector, maxOpenConns int) (*gorm.DB, error) {
	gormLogger := logger.New(logrus.StandardLogger(), logger.Config{
		SlowThreshold:             2 * time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   gormLogger,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NamingStrategy:                           schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(min(10, maxOpenConns))
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Migrate creates or updates every table the application uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.DbUser{},
		&entity.DbFactory{},
		&entity.DbProduct{},
		&entity.DbBatch{},
		&entity.DbComplianceEvent{},
		&entity.DbDemoRequest{},
		&entity.DbCategory{},
		&entity.DbArticle{},
		&entity.DbCourse{},
		&entity.DbCourseModule{},
		&entity.DbLesson{},
		&entity.DbEnrollment{},
	)
}
