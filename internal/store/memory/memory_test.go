package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"tokoledger/backend/internal/domain"
	"tokoledger/backend/internal/store"
)

func localDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func TestListPurchasesFilters(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i, p := range []domain.Purchase{
		{ID: "p1", CategoryID: "cat-a", Date: localDay(2024, time.March, 1), Quantity: 1, TotalCost: 10},
		{ID: "p2", CategoryID: "cat-a", Date: localDay(2024, time.March, 10), Quantity: 1, TotalCost: 10},
		{ID: "p3", CategoryID: "cat-b", Date: localDay(2024, time.March, 5), Quantity: 1, TotalCost: 10},
	} {
		p.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		if _, err := s.CreatePurchase(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := s.ListPurchases(ctx, store.TransactionFilter{CategoryID: "cat-a"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("category filter: got %d, want 2", len(got))
	}
	// Newest date first.
	if got[0].ID != "p2" {
		t.Fatalf("expected p2 first, got %s", got[0].ID)
	}

	from := localDay(2024, time.March, 4)
	to := localDay(2024, time.March, 6)
	got, err = s.ListPurchases(ctx, store.TransactionFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p3" {
		t.Fatalf("date filter: got %+v", got)
	}
}

func TestPurchaseRecalcOnUpdate(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreatePurchase(ctx, domain.Purchase{
		ID: "p1", CategoryID: "cat-a", Date: time.Now(), Quantity: 100, TotalCost: 5000,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CostPerItem != 50 {
		t.Fatalf("CostPerItem = %v, want 50", created.CostPerItem)
	}

	created.Quantity = 200
	updated, err := s.UpdatePurchase(ctx, *created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CostPerItem != 25 {
		t.Fatalf("CostPerItem after update = %v, want 25", updated.CostPerItem)
	}
}

func TestClosureDayUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.CreateClosure(ctx, domain.ShopClosure{
		ID: "c1", Date: localDay(2024, time.June, 1), Reason: domain.ReasonHoliday, IsFullDay: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Same calendar day at a different hour still collides.
	_, err = s.CreateClosure(ctx, domain.ShopClosure{
		ID: "c2", Date: localDay(2024, time.June, 1).Add(10 * time.Hour), Reason: domain.ReasonLeave, IsFullDay: true,
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	found, err := s.FindClosureByDay(ctx, localDay(2024, time.June, 1).Add(23*time.Hour), "")
	if err != nil {
		t.Fatalf("find by day: %v", err)
	}
	if found.ID != first.ID {
		t.Fatalf("found %s, want %s", found.ID, first.ID)
	}

	if _, err := s.FindClosureByDay(ctx, localDay(2024, time.June, 1), first.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("excluding the only closure should yield not found, got %v", err)
	}
}

func TestGetUnknownIDsReturnNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetCategory(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("category: %v", err)
	}
	if _, err := s.GetPurchase(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("purchase: %v", err)
	}
	if _, err := s.GetSale(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("sale: %v", err)
	}
	if err := s.DeleteSale(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("delete sale: %v", err)
	}
}

func TestSeededStoreIsUsable(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	categories, err := s.ListCategories(ctx)
	if err != nil || len(categories) == 0 {
		t.Fatalf("seeded categories: %v (%d)", err, len(categories))
	}
	users, err := s.ListUsers(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("seeded users: %v (%d)", err, len(users))
	}
	sales, err := s.ListSales(ctx, store.TransactionFilter{})
	if err != nil || len(sales) == 0 {
		t.Fatalf("seeded sales: %v", err)
	}
	for _, sale := range sales {
		if sale.TotalAmount != float64(sale.Quantity)*sale.SellingPricePerItem {
			t.Fatalf("seeded sale %s has stale total", sale.ID)
		}
	}
}
