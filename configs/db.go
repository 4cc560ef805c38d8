package configs

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
)

// ConnectDB opens the configured database. Postgres in production, sqlite for
// local dev and tests. The handle is returned, not stashed in a package var:
// lifecycle belongs to main.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DBSource)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBSource)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func SetupDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Merchant{},
		&entity.Courier{}, &entity.CourierRate{},
		&entity.OrderStatus{}, &entity.Order{},
		&entity.Review{},
		&entity.TrustScore{},
		&entity.CheckoutPosition{},
		&entity.SubscriptionLimits{},
	)
}
