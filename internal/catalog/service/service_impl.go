package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/quartzsec/armora/internal/catalog/domain"
	pricingdomain "github.com/quartzsec/armora/internal/pricing/domain"
	"github.com/quartzsec/armora/internal/principal"
	"github.com/quartzsec/armora/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.ProductResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ProductResponse{}, domain.ErrInvalidName
	}

	plans := make([]domain.Plan, 0, len(req.Plans))
	productID := s.genID.Generate()
	for _, planReq := range req.Plans {
		plan, err := s.buildPlan(productID, planReq)
		if err != nil {
			return domain.ProductResponse{}, err
		}
		plans = append(plans, plan)
	}

	var orgID snowflake.ID
	if p, ok := principal.FromContext(ctx); ok && p.OrgID != nil {
		orgID = *p.OrgID
	}
	for i := range plans {
		plans[i].OrgID = orgID
	}

	product := domain.Product{
		ID:          productID,
		OrgID:       orgID,
		Code:        slug.Make(name),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Active:      true,
		Metadata:    req.Metadata,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertProduct(ctx, tx, &product); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateCode
			}
			return err
		}
		for i := range plans {
			if err := s.repo.InsertPlan(ctx, tx, &plans[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.ProductResponse{}, err
	}

	return domain.ProductResponse{Product: product, Plans: plans}, nil
}

func (s *Service) buildPlan(productID snowflake.ID, req domain.CreatePlanRequest) (domain.Plan, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Plan{}, domain.ErrInvalidName
	}

	switch req.Shape {
	case pricingdomain.ShapeFlat, pricingdomain.ShapePerDevice, pricingdomain.ShapePerUnit:
	default:
		return domain.Plan{}, domain.ErrInvalidShape
	}

	interval := req.BillingInterval
	if req.Shape == pricingdomain.ShapePerUnit {
		interval = ""
	} else {
		switch interval {
		case pricingdomain.Month, pricingdomain.Year:
		default:
			return domain.Plan{}, domain.ErrInvalidInterval
		}
	}

	if req.BasePrice.IsNegative() ||
		req.SetupFee.IsNegative() ||
		req.AdditionalSetupFee.IsNegative() ||
		req.AdditionalRecurringPrice.IsNegative() {
		return domain.Plan{}, domain.ErrInvalidPrice
	}

	return domain.Plan{
		ID:                       s.genID.Generate(),
		ProductID:                productID,
		Code:                     slug.Make(name),
		Name:                     name,
		Shape:                    req.Shape,
		BillingInterval:          interval,
		BasePrice:                req.BasePrice,
		SetupFee:                 req.SetupFee,
		AdditionalSetupFee:       req.AdditionalSetupFee,
		AdditionalRecurringPrice: req.AdditionalRecurringPrice,
		Active:                   true,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]domain.ProductResponse, error) {
	products, err := s.repo.ListProducts(ctx, s.db, true)
	if err != nil {
		return nil, err
	}

	responses := make([]domain.ProductResponse, 0, len(products))
	for _, product := range products {
		plans, err := s.repo.ListPlansByProductID(ctx, s.db, product.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, domain.ProductResponse{Product: product, Plans: plans})
	}
	return responses, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.ProductResponse, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ProductResponse{}, domain.ErrInvalidID
	}

	product, err := s.repo.FindProductByID(ctx, s.db, productID)
	if err != nil {
		return domain.ProductResponse{}, err
	}
	if product == nil {
		return domain.ProductResponse{}, domain.ErrNotFound
	}

	plans, err := s.repo.ListPlansByProductID(ctx, s.db, product.ID)
	if err != nil {
		return domain.ProductResponse{}, err
	}

	return domain.ProductResponse{Product: *product, Plans: plans}, nil
}

func (s *Service) GetPlan(ctx context.Context, planID string) (domain.Plan, domain.Product, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(planID))
	if err != nil {
		return domain.Plan{}, domain.Product{}, domain.ErrInvalidID
	}

	plan, err := s.repo.FindPlanByID(ctx, s.db, id)
	if err != nil {
		return domain.Plan{}, domain.Product{}, err
	}
	if plan == nil {
		return domain.Plan{}, domain.Product{}, domain.ErrPlanNotFound
	}

	product, err := s.repo.FindProductByID(ctx, s.db, plan.ProductID)
	if err != nil {
		return domain.Plan{}, domain.Product{}, err
	}
	if product == nil {
		return domain.Plan{}, domain.Product{}, domain.ErrNotFound
	}

	return *plan, *product, nil
}
