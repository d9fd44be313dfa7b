package service

import (
	"context"
	"path/filepath"
	"skillchain/internal/auth"
	"skillchain/internal/entity"
	"skillchain/internal/model"
	sqlrepo "skillchain/internal/model/sql"
	"skillchain/internal/rbac"
	"skillchain/internal/storage"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	repo     model.Repository
	files    *FileIntake
	storeDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, sqlrepo.Migrate(db))

	storeDir := filepath.Join(dir, "uploads")
	store, err := storage.NewLocalStorage(storeDir)
	require.NoError(t, err)

	return &testEnv{
		repo:     sqlrepo.NewGormRepository(db),
		files:    NewFileIntake(store, "/files", 1<<20),
		storeDir: storeDir,
	}
}

func (e *testEnv) factory(t *testing.T, name string) *entity.DbFactory {
	t.Helper()
	factory := &entity.DbFactory{Name: name, Location: "Dhaka"}
	require.NoError(t, e.repo.CreateFactory(context.Background(), factory))
	return factory
}

// user stores an account and returns the subject a token for it would carry.
func (e *testEnv) user(t *testing.T, email, role string, factoryID *uint) rbac.Subject {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := &entity.DbUser{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  email,
		Role:         role,
		FactoryID:    factoryID,
		IsActive:     true,
	}
	require.NoError(t, e.repo.CreateUser(context.Background(), user))
	return rbac.Subject{UserID: user.ID, Role: role, FactoryID: factoryID}
}

func (e *testEnv) admin(t *testing.T) rbac.Subject {
	return e.user(t, "admin@skillchain.test", rbac.RolePlatformAdmin, nil)
}

func (e *testEnv) event(t *testing.T, factoryID, userID uint, eventType, status string) *entity.DbComplianceEvent {
	t.Helper()
	event := &entity.DbComplianceEvent{
		FactoryID: factoryID,
		UserID:    userID,
		EventType: eventType,
		Status:    status,
		Area:      "Floor 1",
	}
	require.NoError(t, e.repo.CreateComplianceEvent(context.Background(), event))
	return event
}

func uintPtr(v uint) *uint {
	return &v
}

func strPtr(v string) *string {
	return &v
}
