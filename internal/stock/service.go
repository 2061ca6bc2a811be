package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	"github.com/anandkhatri/ledgerbook-backend/pkg/enums"
	pkgerrors "github.com/anandkhatri/ledgerbook-backend/pkg/errors"
	"github.com/anandkhatri/ledgerbook-backend/pkg/pagination"
)

// Service is the only path allowed to change an item's quantity; every change
// lands in the journal alongside the item update.
type Service interface {
	Apply(ctx context.Context, input ApplyInput) (*models.StockEntry, error)
	Journal(ctx context.Context, userID, itemID uuid.UUID, params pagination.Params) (*EntryList, error)
}

// ApplyInput captures one signed stock movement.
type ApplyInput struct {
	UserID    uuid.UUID
	ItemID    uuid.UUID
	Delta     int
	EntryType enums.StockEntryType
	Notes     string
}

// EntryList is a cursor page of journal entries, newest first.
type EntryList struct {
	Entries    []models.StockEntry `json:"entries"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService wires a stock service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Apply(ctx context.Context, input ApplyInput) (*models.StockEntry, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity delta must be non-zero")
	}
	if !input.EntryType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock entry type %q", input.EntryType))
	}

	item, err := s.repo.FindItem(ctx, input.UserID, input.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	if input.Delta < 0 && item.Quantity+input.Delta < 0 {
		return nil, InsufficientStockError(item, -input.Delta)
	}

	if err := s.repo.AdjustQuantity(ctx, item.ID, input.Delta); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust item quantity")
	}

	entry := &models.StockEntry{
		UserID:    input.UserID,
		ItemID:    input.ItemID,
		Quantity:  input.Delta,
		EntryType: input.EntryType,
	}
	if input.Notes != "" {
		notes := input.Notes
		entry.Notes = &notes
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append stock entry")
	}
	return entry, nil
}

func (s *service) Journal(ctx context.Context, userID, itemID uuid.UUID, params pagination.Params) (*EntryList, error) {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and item id required")
	}
	list, err := s.repo.ListEntriesByItem(ctx, userID, itemID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock entries")
	}
	return list, nil
}

// InsufficientStockError builds the typed rejection raised before any mutation
// when a movement would drive an item's quantity negative.
func InsufficientStockError(item *models.Item, requested int) error {
	return pkgerrors.New(
		pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for %s: %d available, %d requested", item.Name, item.Quantity, requested),
	).WithDetails(map[string]any{
		"item_id":   item.ID,
		"item_name": item.Name,
		"available": item.Quantity,
		"requested": requested,
	})
}
