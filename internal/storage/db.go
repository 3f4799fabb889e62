// internal/storage/db.go
package storage

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jaswanth12321/carequo-insure-tech/internal/config"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
)

func OpenDB(cfg config.Database, log *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.Port,
		cfg.SSLMode,
		cfg.TimeZone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Employee{},
		&models.Claim{},
		&models.FinancialTransaction{},
		&models.WellnessPartner{},
		&models.Booking{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("database ready", zap.String("host", cfg.Host), zap.String("name", cfg.Name))
	return db, nil
}
