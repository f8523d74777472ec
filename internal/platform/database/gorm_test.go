package database

import (
	"testing"

	"mailru_broker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type widget struct {
	ID   uint
	Name string
}

func TestNewGORM_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:       "sqlite",
		DBSQLitePath:   "file::memory:?cache=shared",
		DBMaxIdleConns: 1,
		DBMaxOpenConns: 1,
		LogLevel:       "error",
	}
	logger := zap.NewNop()

	db, err := NewGORM(cfg, logger)
	require.NoError(t, err)
	defer CloseGORMDB(db, logger)

	require.NoError(t, AutoMigrate(db, &widget{}))
	require.NoError(t, db.Create(&widget{Name: "a"}).Error)

	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNewGORM_UnknownDriver(t *testing.T) {
	_, err := NewGORM(&config.Config{DBDriver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}
