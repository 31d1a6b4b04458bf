// Package seed bootstraps a fresh database so the service is usable out of
// the box for local and self-hosted deployments.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/quartzsec/armora/internal/catalog/domain"
	pricingdomain "github.com/quartzsec/armora/internal/pricing/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultProductCode = "device-security-suite"
	defaultProductName = "Device Security Suite"
)

// EnsureCatalog seeds the default device-security product with one plan per
// billing shape. It is idempotent: an existing product with the default code
// short-circuits the whole seed.
func EnsureCatalog(db *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing catalogdomain.Product
		err := tx.WithContext(ctx).Where("code = ?", defaultProductCode).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		product := catalogdomain.Product{
			ID:          node.Generate(),
			OrgID:       orgID,
			Code:        defaultProductCode,
			Name:        defaultProductName,
			Description: "Endpoint protection for managed device fleets.",
			Active:      true,
		}
		if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
			return err
		}

		plans := []catalogdomain.Plan{
			{
				ID:                       node.Generate(),
				OrgID:                    orgID,
				ProductID:                product.ID,
				Code:                     "per-device-annual",
				Name:                     "Per Device Annual",
				Shape:                    pricingdomain.ShapePerDevice,
				BillingInterval:          pricingdomain.Year,
				BasePrice:                decimal.NewFromInt(100),
				SetupFee:                 decimal.NewFromInt(50),
				AdditionalSetupFee:       decimal.NewFromInt(20),
				AdditionalRecurringPrice: decimal.NewFromInt(100),
				Active:                   true,
			},
			{
				ID:              node.Generate(),
				OrgID:           orgID,
				ProductID:       product.ID,
				Code:            "site-license-monthly",
				Name:            "Site License Monthly",
				Shape:           pricingdomain.ShapeFlat,
				BillingInterval: pricingdomain.Month,
				BasePrice:       decimal.NewFromInt(499),
				Active:          true,
			},
			{
				ID:        node.Generate(),
				OrgID:     orgID,
				ProductID: product.ID,
				Code:      "hardware-appliance",
				Name:      "Hardware Appliance",
				Shape:     pricingdomain.ShapePerUnit,
				BasePrice: decimal.NewFromFloat(129.99),
				Active:    true,
			},
		}
		for i := range plans {
			if err := tx.WithContext(ctx).Create(&plans[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
