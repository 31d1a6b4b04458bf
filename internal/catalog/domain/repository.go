package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertProduct(ctx context.Context, db *gorm.DB, product *Product) error
	InsertPlan(ctx context.Context, db *gorm.DB, plan *Plan) error
	FindProductByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	FindPlanByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Plan, error)
	ListProducts(ctx context.Context, db *gorm.DB, activeOnly bool) ([]Product, error)
	ListPlansByProductID(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]Plan, error)
}
