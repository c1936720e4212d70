package storage

import (
	"sync"

	"keygate/internal/config"
	"keygate/internal/util/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

var (
	once sync.Once
	db   *gorm.DB
)

func GetDb() *gorm.DB {
	once.Do(func() {
		log := logger.GetLogger()

		database, err := gorm.Open(postgres.Open(config.GetEnv().DatabaseDsn), &gorm.Config{
			Logger:         gorm_logger.Default.LogMode(gorm_logger.Silent),
			TranslateError: true,
		})
		if err != nil {
			log.Error("Failed to connect to database", "error", err)
			panic(err)
		}

		sqlDb, err := database.DB()
		if err != nil {
			log.Error("Failed to get underlying sql.DB", "error", err)
			panic(err)
		}

		sqlDb.SetMaxOpenConns(50)
		sqlDb.SetMaxIdleConns(10)

		db = database
	})

	return db
}
