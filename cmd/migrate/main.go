package main

import (
	"github.com/SeakMengs/AutoTermo/internal/config"
	"github.com/SeakMengs/AutoTermo/internal/database"
	"github.com/SeakMengs/AutoTermo/internal/env"
	"github.com/SeakMengs/AutoTermo/internal/model"
	"github.com/SeakMengs/AutoTermo/internal/util"
)

func init() {
	env.LoadEnv()
}

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV, "migrate")
	defer logger.Sync()

	logger.Infof("Database configuration: %s@%s:%s/%s", cfg.DB.DB_USERNAME, cfg.DB.DB_HOST, cfg.DB.DB_PORT, cfg.DB.DB_DATABASE)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS citext`).Error; err != nil {
		logger.Panic(err)
	}

	migrateErr := db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Vacancy{},
		&model.TermDocument{},
		&model.TermSignature{},
	)
	if migrateErr != nil {
		logger.Panic(migrateErr)
	}

	logger.Info("Migration completed")
}
