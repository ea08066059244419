package postgres

import (
	"log"

	"github.com/sokohub/sokohub-order-service/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.OrderConfig) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.OrderDB.Dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	return db
}
