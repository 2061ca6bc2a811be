package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anandkhatri/ledgerbook-backend/internal/stock"
	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	"github.com/anandkhatri/ledgerbook-backend/pkg/enums"
	pkgerrors "github.com/anandkhatri/ledgerbook-backend/pkg/errors"
	"github.com/anandkhatri/ledgerbook-backend/pkg/money"
	"github.com/anandkhatri/ledgerbook-backend/pkg/pagination"
)

// Service exposes catalog CRUD. Stock movements, opening stock included, go
// through the stock service so the journal stays complete.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateItemInput) (*ItemDTO, error)
	Get(ctx context.Context, userID, itemID uuid.UUID) (*ItemDTO, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ItemList, error)
	Update(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	UpdatePrices(ctx context.Context, userID, itemID uuid.UUID, input UpdatePricesInput) (*ItemDTO, error)
	SetCustomerPrice(ctx context.Context, userID, itemID uuid.UUID, input CustomerPriceInput) error
	PriceHistory(ctx context.Context, userID, itemID uuid.UUID) ([]models.ItemPriceRevision, error)
	AdjustStock(ctx context.Context, userID, itemID uuid.UUID, input AdjustStockInput) (*ItemDTO, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
}

type stockApplier interface {
	Apply(ctx context.Context, input stock.ApplyInput) (*models.StockEntry, error)
}

type customerFinder interface {
	FindByID(ctx context.Context, userID, customerID uuid.UUID) (*models.Customer, error)
}

type service struct {
	repo      Repository
	stock     stockApplier
	customers customerFinder
}

// NewService wires an items service with its collaborators.
func NewService(repo Repository, stockSvc stockApplier, customers customerFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("items repository required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{repo: repo, stock: stockSvc, customers: customers}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateItemInput) (*ItemDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	item := &models.Item{
		UserID:    userID,
		Name:      input.Name,
		SKU:       input.SKU,
		BuyPrice:  money.Round2(input.BuyPrice),
		SellPrice: money.Round2(input.SellPrice),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}

	if input.OpeningStock > 0 {
		_, err := s.stock.Apply(ctx, stock.ApplyInput{
			UserID:    userID,
			ItemID:    item.ID,
			Delta:     input.OpeningStock,
			EntryType: enums.StockEntryAddition,
			Notes:     "opening stock",
		})
		if err != nil {
			return nil, err
		}
		item.Quantity = input.OpeningStock
	}
	return toDTO(item), nil
}

func (s *service) Get(ctx context.Context, userID, itemID uuid.UUID) (*ItemDTO, error) {
	item, err := s.load(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	return toDTO(item), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ItemList, error) {
	items, next, err := s.repo.List(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	out := make([]ItemDTO, 0, len(items))
	for i := range items {
		out = append(out, *toDTO(&items[i]))
	}
	return &ItemList{Items: out, NextCursor: next}, nil
}

func (s *service) Update(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	item, err := s.load(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.SKU != nil {
		item.SKU = input.SKU
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}
	return toDTO(item), nil
}

// UpdatePrices applies new prices and appends a revision. Past sale lines keep
// their own snapshots, so this never rewrites recorded profit.
func (s *service) UpdatePrices(ctx context.Context, userID, itemID uuid.UUID, input UpdatePricesInput) (*ItemDTO, error) {
	item, err := s.load(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	item.BuyPrice = money.Round2(input.BuyPrice)
	item.SellPrice = money.Round2(input.SellPrice)
	revision := &models.ItemPriceRevision{
		ItemID:    item.ID,
		BuyPrice:  item.BuyPrice,
		SellPrice: item.SellPrice,
	}
	if input.Notes != "" {
		notes := input.Notes
		revision.Notes = &notes
	}
	if err := s.repo.UpdatePrices(ctx, item, revision); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item prices")
	}
	return toDTO(item), nil
}

func (s *service) SetCustomerPrice(ctx context.Context, userID, itemID uuid.UUID, input CustomerPriceInput) error {
	item, err := s.load(ctx, userID, itemID)
	if err != nil {
		return err
	}
	customer, err := s.customers.FindByID(ctx, userID, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer.IsDeleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	price := &models.ItemCustomerPrice{
		ItemID:     item.ID,
		CustomerID: customer.ID,
		Price:      money.Round2(input.Price),
	}
	if err := s.repo.UpsertCustomerPrice(ctx, price); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set customer price")
	}
	return nil
}

func (s *service) PriceHistory(ctx context.Context, userID, itemID uuid.UUID) ([]models.ItemPriceRevision, error) {
	item, err := s.load(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	revisions, err := s.repo.ListPriceRevisions(ctx, item.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list price revisions")
	}
	return revisions, nil
}

func (s *service) AdjustStock(ctx context.Context, userID, itemID uuid.UUID, input AdjustStockInput) (*ItemDTO, error) {
	notes := input.Notes
	if notes == "" {
		notes = "manual adjustment"
	}
	_, err := s.stock.Apply(ctx, stock.ApplyInput{
		UserID:    userID,
		ItemID:    itemID,
		Delta:     input.Delta,
		EntryType: enums.StockEntryAdjustment,
		Notes:     notes,
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, itemID)
}

func (s *service) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.load(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	return nil
}

func (s *service) load(ctx context.Context, userID, itemID uuid.UUID) (*models.Item, error) {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and item id required")
	}
	item, err := s.repo.FindByID(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}
