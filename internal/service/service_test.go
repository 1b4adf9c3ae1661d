package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tokoledger/backend/internal/analytics"
	"tokoledger/backend/internal/domain"
	"tokoledger/backend/internal/store"
	"tokoledger/backend/internal/store/memory"
)

func analyticsDayKeyToday() string {
	return analytics.DayKey(time.Now())
}

func newTestService() *Service {
	return New(memory.New(), zerolog.Nop())
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: domain.RoleAdmin})
}

func staffCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "staff", Role: domain.RoleStaff})
}

func mustCategory(t *testing.T, svc *Service, name string) *domain.Category {
	t.Helper()
	category, err := svc.CreateCategory(adminCtx(), domain.CategoryCreateRequest{Name: name})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return category
}

func TestPurchaseDerivesCostPerItem(t *testing.T) {
	svc := newTestService()
	rice := mustCategory(t, svc, "Rice")

	purchase, err := svc.CreatePurchase(adminCtx(), domain.PurchaseCreateRequest{
		CategoryID:          rice.ID,
		Quantity:            100,
		TotalCost:           5000,
		SellingPricePerItem: 60,
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if purchase.CostPerItem != 50 {
		t.Fatalf("CostPerItem = %v, want 50", purchase.CostPerItem)
	}
	if purchase.CategoryName != "Rice" {
		t.Fatalf("CategoryName = %q, want snapshot of category", purchase.CategoryName)
	}
}

func TestSaleComputesTotalAndReducesStock(t *testing.T) {
	svc := newTestService()
	rice := mustCategory(t, svc, "Rice")
	ctx := adminCtx()

	if _, err := svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		CategoryID: rice.ID, Quantity: 100, TotalCost: 5000, SellingPricePerItem: 60,
	}); err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	sale, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		CategoryID: rice.ID, Quantity: 30, SellingPricePerItem: 60,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.TotalAmount != 1800 {
		t.Fatalf("TotalAmount = %v, want 1800", sale.TotalAmount)
	}

	inv, err := svc.CategoryInventory(ctx, rice.ID)
	if err != nil {
		t.Fatalf("category inventory: %v", err)
	}
	if inv.Remaining != 70 {
		t.Fatalf("Remaining = %d, want 70", inv.Remaining)
	}
	if inv.AvgCostPerItem != 50 {
		t.Fatalf("AvgCostPerItem = %v, want 50", inv.AvgCostPerItem)
	}
}

func TestSaleRejectedWhenStockInsufficient(t *testing.T) {
	svc := newTestService()
	rice := mustCategory(t, svc, "Rice")
	ctx := adminCtx()

	if _, err := svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		CategoryID: rice.ID, Quantity: 10, TotalCost: 500, SellingPricePerItem: 60,
	}); err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if _, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		CategoryID: rice.ID, Quantity: 3, SellingPricePerItem: 60,
	}); err != nil {
		t.Fatalf("first sale: %v", err)
	}

	_, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		CategoryID: rice.ID, Quantity: 8, SellingPricePerItem: 60,
	})
	if err == nil {
		t.Fatalf("expected insufficient stock error")
	}
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("error should wrap ErrInsufficientStock, got %v", err)
	}
	var stockErr *store.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("error should carry available quantity, got %v", err)
	}
	if stockErr.Available != 7 {
		t.Fatalf("Available = %d, want 7", stockErr.Available)
	}
}

// Sale updates intentionally skip the stock guard, so a quantity edit can
// drive derived stock negative.
func TestSaleUpdateBypassesStockGuard(t *testing.T) {
	svc := newTestService()
	rice := mustCategory(t, svc, "Rice")
	ctx := adminCtx()

	if _, err := svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		CategoryID: rice.ID, Quantity: 10, TotalCost: 500, SellingPricePerItem: 60,
	}); err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	sale, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		CategoryID: rice.ID, Quantity: 5, SellingPricePerItem: 60,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	bigQty := 50
	updated, err := svc.UpdateSale(ctx, sale.ID, domain.SaleUpdateRequest{Quantity: &bigQty})
	if err != nil {
		t.Fatalf("update should bypass the stock check, got %v", err)
	}
	if updated.TotalAmount != 3000 {
		t.Fatalf("TotalAmount = %v, want 3000", updated.TotalAmount)
	}

	inv, err := svc.CategoryInventory(ctx, rice.ID)
	if err != nil {
		t.Fatalf("category inventory: %v", err)
	}
	if inv.Remaining != -40 {
		t.Fatalf("Remaining = %d, want -40", inv.Remaining)
	}
}

func TestDuplicateCategoryNameRejected(t *testing.T) {
	svc := newTestService()
	mustCategory(t, svc, "Rice")

	_, err := svc.CreateCategory(adminCtx(), domain.CategoryCreateRequest{Name: "  rice "})
	if err == nil {
		t.Fatalf("expected duplicate name rejection")
	}
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCategoryRenameKeepsTransactionSnapshots(t *testing.T) {
	svc := newTestService()
	rice := mustCategory(t, svc, "Rice")
	ctx := adminCtx()

	purchase, err := svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		CategoryID: rice.ID, Quantity: 10, TotalCost: 100, SellingPricePerItem: 15,
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	newName := "Premium Rice"
	if _, err := svc.UpdateCategory(ctx, rice.ID, domain.CategoryUpdateRequest{Name: &newName}); err != nil {
		t.Fatalf("rename category: %v", err)
	}

	kept, err := svc.GetPurchase(ctx, purchase.ID)
	if err != nil {
		t.Fatalf("get purchase: %v", err)
	}
	if kept.CategoryName != "Rice" {
		t.Fatalf("existing purchase should keep old name, got %q", kept.CategoryName)
	}

	fresh, err := svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		CategoryID: rice.ID, Quantity: 5, TotalCost: 60, SellingPricePerItem: 18,
	})
	if err != nil {
		t.Fatalf("create purchase after rename: %v", err)
	}
	if fresh.CategoryName != "Premium Rice" {
		t.Fatalf("new purchase should snapshot the new name, got %q", fresh.CategoryName)
	}
}

func TestDeleteRequiresAdminRole(t *testing.T) {
	svc := newTestService()
	rice := mustCategory(t, svc, "Rice")

	if err := svc.DeleteCategory(staffCtx(), rice.ID); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("staff delete should yield ErrForbidden, got %v", err)
	}
	if err := svc.DeleteSale(context.Background(), "any"); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("missing actor should yield ErrForbidden, got %v", err)
	}
	if err := svc.DeleteCategory(adminCtx(), rice.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
}

func TestClosureDuplicateDateRejected(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	first, err := svc.CreateClosure(ctx, domain.ClosureCreateRequest{
		Date: "2024-06-01", Reason: domain.ReasonHoliday,
	})
	if err != nil {
		t.Fatalf("create closure: %v", err)
	}
	if !first.IsFullDay {
		t.Fatalf("closures default to full day")
	}

	_, err = svc.CreateClosure(ctx, domain.ClosureCreateRequest{
		Date: "2024-06-01", Reason: domain.ReasonLeave,
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("same-day closure should be rejected, got %v", err)
	}

	second, err := svc.CreateClosure(ctx, domain.ClosureCreateRequest{
		Date: "2024-06-02", Reason: domain.ReasonLeave,
	})
	if err != nil {
		t.Fatalf("closure on another day: %v", err)
	}

	// Moving the second closure onto the first one's day must fail, but a
	// self-update keeping its own date is fine.
	collide := "2024-06-01"
	if _, err := svc.UpdateClosure(ctx, second.ID, domain.ClosureUpdateRequest{Date: &collide}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("update onto occupied day should fail, got %v", err)
	}
	same := "2024-06-02"
	if _, err := svc.UpdateClosure(ctx, second.ID, domain.ClosureUpdateRequest{Date: &same}); err != nil {
		t.Fatalf("self-update on own day should pass, got %v", err)
	}
}

func TestClosureReasonValidated(t *testing.T) {
	svc := newTestService()
	_, err := svc.CreateClosure(adminCtx(), domain.ClosureCreateRequest{
		Date: "2024-06-01", Reason: "Vacation",
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("unknown reason should be rejected, got %v", err)
	}
}

func TestDashboardProfitMarginZeroWithoutRevenue(t *testing.T) {
	svc := newTestService()
	rice := mustCategory(t, svc, "Rice")
	ctx := adminCtx()

	if _, err := svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		CategoryID: rice.ID, Quantity: 10, TotalCost: 500, SellingPricePerItem: 60,
	}); err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	dashboard, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dashboard.Summary.ProfitMargin != 0 {
		t.Fatalf("ProfitMargin = %v, want 0 when revenue is zero", dashboard.Summary.ProfitMargin)
	}
	if dashboard.Summary.Profit != -500 {
		t.Fatalf("Profit = %v, want -500", dashboard.Summary.Profit)
	}
	if dashboard.Summary.RemainingStock != 10 {
		t.Fatalf("RemainingStock = %d, want 10", dashboard.Summary.RemainingStock)
	}
}

func TestDashboardTopCategoriesRankedByRevenue(t *testing.T) {
	svc := newTestService()
	rice := mustCategory(t, svc, "Rice")
	oil := mustCategory(t, svc, "Cooking Oil")
	ctx := adminCtx()

	for _, c := range []*domain.Category{rice, oil} {
		if _, err := svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
			CategoryID: c.ID, Quantity: 100, TotalCost: 1000, SellingPricePerItem: 20,
		}); err != nil {
			t.Fatalf("create purchase: %v", err)
		}
	}
	if _, err := svc.CreateSale(ctx, domain.SaleCreateRequest{CategoryID: rice.ID, Quantity: 2, SellingPricePerItem: 20}); err != nil {
		t.Fatalf("sale: %v", err)
	}
	if _, err := svc.CreateSale(ctx, domain.SaleCreateRequest{CategoryID: oil.ID, Quantity: 10, SellingPricePerItem: 20}); err != nil {
		t.Fatalf("sale: %v", err)
	}

	dashboard, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dashboard.TopCategories) != 2 {
		t.Fatalf("expected 2 top categories, got %d", len(dashboard.TopCategories))
	}
	if dashboard.TopCategories[0].Category != "Cooking Oil" {
		t.Fatalf("top category = %q, want Cooking Oil", dashboard.TopCategories[0].Category)
	}
}

func TestInventoryAggregatesAllCategories(t *testing.T) {
	svc := newTestService()
	rice := mustCategory(t, svc, "Rice")
	mustCategory(t, svc, "Sugar")
	ctx := adminCtx()

	if _, err := svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		CategoryID: rice.ID, Quantity: 100, TotalCost: 5000, SellingPricePerItem: 70,
	}); err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if _, err := svc.CreateSale(ctx, domain.SaleCreateRequest{CategoryID: rice.ID, Quantity: 30, SellingPricePerItem: 60}); err != nil {
		t.Fatalf("sale: %v", err)
	}

	inv, err := svc.Inventory(ctx)
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if inv.Summary.TotalCategories != 2 {
		t.Fatalf("TotalCategories = %d, want 2", inv.Summary.TotalCategories)
	}
	if inv.Summary.TotalRemainingItems != 70 {
		t.Fatalf("TotalRemainingItems = %d, want 70", inv.Summary.TotalRemainingItems)
	}
	// 70 remaining at 50 cost each.
	if inv.Summary.TotalStockValue != 3500 {
		t.Fatalf("TotalStockValue = %v, want 3500", inv.Summary.TotalStockValue)
	}
	// Sugar has no transactions but still appears with zero stock.
	found := false
	for _, row := range inv.Inventory {
		if row.Category == "Sugar" {
			found = true
			if row.Remaining != 0 {
				t.Fatalf("Sugar remaining = %d, want 0", row.Remaining)
			}
		}
	}
	if !found {
		t.Fatalf("empty category missing from inventory")
	}
}

func TestWeeklySalesMergesClosures(t *testing.T) {
	svc := newTestService()
	rice := mustCategory(t, svc, "Rice")
	ctx := adminCtx()

	if _, err := svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		CategoryID: rice.ID, Quantity: 100, TotalCost: 5000, SellingPricePerItem: 70,
	}); err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if _, err := svc.CreateSale(ctx, domain.SaleCreateRequest{CategoryID: rice.ID, Quantity: 30, SellingPricePerItem: 60}); err != nil {
		t.Fatalf("sale: %v", err)
	}
	// A closure today lands in the current week's bucket.
	if _, err := svc.CreateClosure(ctx, domain.ClosureCreateRequest{
		Date: analyticsDayKeyToday(), Reason: domain.ReasonMaintenance,
	}); err != nil {
		t.Fatalf("closure: %v", err)
	}

	report, err := svc.WeeklySales(ctx, "", "")
	if err != nil {
		t.Fatalf("weekly sales: %v", err)
	}
	if !report.Success || len(report.Data) == 0 {
		t.Fatalf("expected at least one weekly bucket")
	}
	last := report.Data[len(report.Data)-1]
	if last.TotalRevenue != "1800.00" {
		t.Fatalf("TotalRevenue = %q, want \"1800.00\"", last.TotalRevenue)
	}
	if last.ClosedDays != 1 {
		t.Fatalf("ClosedDays = %v, want 1", last.ClosedDays)
	}
}

func TestDailySalesDefaultWindow(t *testing.T) {
	svc := newTestService()
	report, err := svc.DailySales(adminCtx(), "", "")
	if err != nil {
		t.Fatalf("daily sales: %v", err)
	}
	// Trailing 30-day default window plus today.
	if len(report.Data) != 31 {
		t.Fatalf("expected 31 day buckets, got %d", len(report.Data))
	}
}

func TestAnalyticsRejectsBadDates(t *testing.T) {
	svc := newTestService()
	if _, err := svc.DailySales(adminCtx(), "not-a-date", ""); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
