package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	"github.com/anandkhatri/ledgerbook-backend/pkg/enums"
	pkgerrors "github.com/anandkhatri/ledgerbook-backend/pkg/errors"
	"github.com/anandkhatri/ledgerbook-backend/pkg/pagination"
)

func TestApplyRecordsJournalEntry(t *testing.T) {
	repo := newStubStockRepo()
	userID := uuid.New()
	item := repo.addItem(userID, "Rice 5kg", 10)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	entry, err := svc.Apply(context.Background(), ApplyInput{
		UserID:    userID,
		ItemID:    item.ID,
		Delta:     -4,
		EntryType: enums.StockEntrySale,
		Notes:     "sale abc",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if entry.Quantity != -4 {
		t.Fatalf("expected entry delta -4, got %d", entry.Quantity)
	}
	if item.Quantity != 6 {
		t.Fatalf("expected quantity 6, got %d", item.Quantity)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected one journal entry, got %d", len(repo.entries))
	}
	if repo.entries[0].Notes == nil || *repo.entries[0].Notes != "sale abc" {
		t.Fatalf("expected notes recorded")
	}
}

func TestApplyRejectsNegativeStock(t *testing.T) {
	repo := newStubStockRepo()
	userID := uuid.New()
	item := repo.addItem(userID, "Rice 5kg", 3)
	svc, _ := NewService(repo)

	_, err := svc.Apply(context.Background(), ApplyInput{
		UserID:    userID,
		ItemID:    item.ID,
		Delta:     -5,
		EntryType: enums.StockEntrySale,
	})

	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if item.Quantity != 3 {
		t.Fatalf("expected quantity untouched, got %d", item.Quantity)
	}
	if len(repo.entries) != 0 {
		t.Fatalf("expected no journal entry, got %d", len(repo.entries))
	}
}

func TestApplyValidatesInput(t *testing.T) {
	repo := newStubStockRepo()
	userID := uuid.New()
	item := repo.addItem(userID, "Rice 5kg", 3)
	svc, _ := NewService(repo)

	cases := []ApplyInput{
		{ItemID: item.ID, Delta: 1, EntryType: enums.StockEntryAddition},
		{UserID: userID, Delta: 1, EntryType: enums.StockEntryAddition},
		{UserID: userID, ItemID: item.ID, Delta: 0, EntryType: enums.StockEntryAddition},
		{UserID: userID, ItemID: item.ID, Delta: 1, EntryType: "bogus"},
	}
	for i, input := range cases {
		_, err := svc.Apply(context.Background(), input)
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestApplyUnknownItem(t *testing.T) {
	repo := newStubStockRepo()
	svc, _ := NewService(repo)

	_, err := svc.Apply(context.Background(), ApplyInput{
		UserID:    uuid.New(),
		ItemID:    uuid.New(),
		Delta:     1,
		EntryType: enums.StockEntryAddition,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

type stubStockRepo struct {
	items   map[uuid.UUID]*models.Item
	entries []*models.StockEntry
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{items: map[uuid.UUID]*models.Item{}}
}

func (r *stubStockRepo) addItem(userID uuid.UUID, name string, quantity int) *models.Item {
	item := &models.Item{ID: uuid.New(), UserID: userID, Name: name, Quantity: quantity}
	r.items[item.ID] = item
	return item
}

func (r *stubStockRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubStockRepo) FindItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Item, error) {
	item, ok := r.items[itemID]
	if !ok || item.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *stubStockRepo) AdjustQuantity(ctx context.Context, itemID uuid.UUID, delta int) error {
	item, ok := r.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Quantity += delta
	return nil
}

func (r *stubStockRepo) CreateEntry(ctx context.Context, entry *models.StockEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *stubStockRepo) ListEntriesByItem(ctx context.Context, userID, itemID uuid.UUID, params pagination.Params) (*EntryList, error) {
	out := &EntryList{}
	for _, entry := range r.entries {
		if entry.UserID == userID && entry.ItemID == itemID {
			out.Entries = append(out.Entries, *entry)
		}
	}
	return out, nil
}
