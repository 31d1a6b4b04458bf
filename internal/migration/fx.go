package migration

import (
	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/quartzsec/armora/internal/account/domain"
	auditdomain "github.com/quartzsec/armora/internal/audit/domain"
	catalogdomain "github.com/quartzsec/armora/internal/catalog/domain"
	"github.com/quartzsec/armora/internal/config"
	orderdomain "github.com/quartzsec/armora/internal/order/domain"
	"github.com/quartzsec/armora/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := conn.AutoMigrate(
				&catalogdomain.Product{},
				&catalogdomain.Plan{},
				&orderdomain.PurchaseOrder{},
				&orderdomain.OrderLineItem{},
				&accountdomain.AccountRequest{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		if !cfg.Bootstrap.SeedCatalog {
			return nil
		}

		orgID := snowflake.ID(cfg.DefaultOrgID)
		if orgID == 0 && cfg.Bootstrap.EnsureDefaultOrg {
			orgID = node.Generate()
		}
		return seed.EnsureCatalog(conn, node, orgID)
	}),
)
