package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/stakemesh/wallet-gateway/internal/kvstore"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_kv_entries",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&kvstore.Entry{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&kvstore.Entry{})
			},
		},
	})

	return m.Migrate()
}
