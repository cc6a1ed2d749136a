package app

import (
	"github.com/robfig/cron/v3"
	"github.com/talkincode/toughcrm/config"
	"github.com/talkincode/toughcrm/internal/repository"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StoreProvider provides the transactional repository store
type StoreProvider interface {
	Store() repository.Store
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	DBProvider
	ConfigProvider
	StoreProvider
	SchedulerProvider

	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// SeedData inserts the demo customers and products that are missing
	SeedData() error
	// RunJobNow runs a registered maintenance job immediately by name
	RunJobNow(name string) error
}
