package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tokoledger/backend/internal/analytics"
	"tokoledger/backend/internal/domain"
	"tokoledger/backend/internal/store"
	"tokoledger/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Default report windows when the caller gives no explicit range.
const (
	defaultWeeklyWindowDays    = 8 * 7
	defaultDailyWindowDays     = 30
	defaultDayOfWeekWindowDays = 2 * 7
	defaultClosureStatsDays    = 90
)

type Service struct {
	repo store.Repository
	log  zerolog.Logger
}

func New(repo store.Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, log: logger}
}

func requireAdmin(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return store.ErrForbidden
	}
	return nil
}

// parseDate accepts plain calendar dates and RFC3339 timestamps. Plain
// dates are anchored at local midnight to match calendar-day semantics.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Local(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, store.ErrValidation)
}

func startOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// parseRange resolves optional startDate/endDate query values against a
// default trailing window of windowDays. The end bound is inclusive of
// the whole calendar day.
func parseRange(startRaw, endRaw string, windowDays int) (time.Time, time.Time, error) {
	end := time.Now().Local()
	if endRaw != "" {
		parsed, err := parseDate(endRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = parsed
	}

	start := startOfDay(end).AddDate(0, 0, -windowDays)
	if startRaw != "" {
		parsed, err := parseDate(startRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}

	return start, endOfDay(end), nil
}

// ---- Categories ----

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryCreateRequest) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("category name is required: %w", store.ErrValidation)
	}

	if _, err := s.repo.FindCategoryByName(ctx, name, ""); err == nil {
		return nil, fmt.Errorf("category already exists: %w", store.ErrValidation)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	created, err := s.repo.CreateCategory(ctx, domain.Category{
		ID:        xid.New("cat"),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("category", created.Name).Msg("category created")
	return created, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, req domain.CategoryUpdateRequest) (*domain.Category, error) {
	existing, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("category name is required: %w", store.ErrValidation)
		}
		if _, err := s.repo.FindCategoryByName(ctx, name, id); err == nil {
			return nil, fmt.Errorf("category name already exists: %w", store.ErrValidation)
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		updated.Name = name
	}
	updated.UpdatedAt = time.Now()

	// Renames do not rewrite history: past purchases and sales keep the
	// category name snapshotted at their creation time.
	return s.repo.UpdateCategory(ctx, updated)
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, id)
}

// ---- Purchases ----

func (s *Service) ListPurchases(ctx context.Context, categoryID, startRaw, endRaw string) ([]domain.Purchase, error) {
	filter, err := buildTransactionFilter(categoryID, startRaw, endRaw)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPurchases(ctx, filter)
}

func (s *Service) GetPurchase(ctx context.Context, id string) (*domain.Purchase, error) {
	return s.repo.GetPurchase(ctx, id)
}

func (s *Service) CreatePurchase(ctx context.Context, req domain.PurchaseCreateRequest) (*domain.Purchase, error) {
	if req.CategoryID == "" {
		return nil, fmt.Errorf("categoryId is required: %w", store.ErrValidation)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", store.ErrValidation)
	}
	if req.TotalCost < 0 {
		return nil, fmt.Errorf("total cost cannot be negative: %w", store.ErrValidation)
	}
	if req.SellingPricePerItem < 0 {
		return nil, fmt.Errorf("selling price cannot be negative: %w", store.ErrValidation)
	}

	category, err := s.repo.GetCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	date := time.Now()
	if req.Date != "" {
		if date, err = parseDate(req.Date); err != nil {
			return nil, err
		}
	}

	purchase := domain.Purchase{
		ID:                  xid.New("pur"),
		Date:                date,
		CategoryID:          category.ID,
		CategoryName:        category.Name,
		Quantity:            req.Quantity,
		TotalCost:           req.TotalCost,
		SellingPricePerItem: req.SellingPricePerItem,
		Supplier:            strings.TrimSpace(req.Supplier),
		CreatedAt:           time.Now(),
	}
	return s.repo.CreatePurchase(ctx, purchase)
}

func (s *Service) UpdatePurchase(ctx context.Context, id string, req domain.PurchaseUpdateRequest) (*domain.Purchase, error) {
	existing, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		updated.Date = date
	}
	if req.CategoryID != nil {
		category, err := s.repo.GetCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		updated.CategoryID = category.ID
		updated.CategoryName = category.Name
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, fmt.Errorf("quantity must be at least 1: %w", store.ErrValidation)
		}
		updated.Quantity = *req.Quantity
	}
	if req.TotalCost != nil {
		if *req.TotalCost < 0 {
			return nil, fmt.Errorf("total cost cannot be negative: %w", store.ErrValidation)
		}
		updated.TotalCost = *req.TotalCost
	}
	if req.SellingPricePerItem != nil {
		if *req.SellingPricePerItem < 0 {
			return nil, fmt.Errorf("selling price cannot be negative: %w", store.ErrValidation)
		}
		updated.SellingPricePerItem = *req.SellingPricePerItem
	}
	if req.Supplier != nil {
		updated.Supplier = strings.TrimSpace(*req.Supplier)
	}

	// Updates re-derive costPerItem but never re-run the stock check.
	return s.repo.UpdatePurchase(ctx, updated)
}

func (s *Service) DeletePurchase(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.DeletePurchase(ctx, id)
}

// ---- Sales ----

func (s *Service) ListSales(ctx context.Context, categoryID, startRaw, endRaw string) ([]domain.Sale, error) {
	filter, err := buildTransactionFilter(categoryID, startRaw, endRaw)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSales(ctx, filter)
}

func (s *Service) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	return s.repo.GetSale(ctx, id)
}

func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (*domain.Sale, error) {
	if req.CategoryID == "" {
		return nil, fmt.Errorf("categoryId is required: %w", store.ErrValidation)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", store.ErrValidation)
	}
	if req.SellingPricePerItem < 0 {
		return nil, fmt.Errorf("selling price cannot be negative: %w", store.ErrValidation)
	}

	category, err := s.repo.GetCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	// Stock sufficiency is checked at creation only; updates to existing
	// records bypass it. The check is read-then-write against the ledger
	// with no lock, so two concurrent creations can jointly oversell.
	stock, err := s.categoryStock(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	if req.Quantity > stock.Remaining {
		return nil, &store.InsufficientStockError{Available: stock.Remaining}
	}

	date := time.Now()
	if req.Date != "" {
		if date, err = parseDate(req.Date); err != nil {
			return nil, err
		}
	}

	sale := domain.Sale{
		ID:                  xid.New("sal"),
		Date:                date,
		CategoryID:          category.ID,
		CategoryName:        category.Name,
		Quantity:            req.Quantity,
		SellingPricePerItem: req.SellingPricePerItem,
		CreatedAt:           time.Now(),
	}
	return s.repo.CreateSale(ctx, sale)
}

func (s *Service) UpdateSale(ctx context.Context, id string, req domain.SaleUpdateRequest) (*domain.Sale, error) {
	existing, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		updated.Date = date
	}
	if req.CategoryID != nil {
		category, err := s.repo.GetCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		updated.CategoryID = category.ID
		updated.CategoryName = category.Name
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, fmt.Errorf("quantity must be at least 1: %w", store.ErrValidation)
		}
		updated.Quantity = *req.Quantity
	}
	if req.SellingPricePerItem != nil {
		if *req.SellingPricePerItem < 0 {
			return nil, fmt.Errorf("selling price cannot be negative: %w", store.ErrValidation)
		}
		updated.SellingPricePerItem = *req.SellingPricePerItem
	}

	// No stock re-check here: an update can legally drive stock negative.
	return s.repo.UpdateSale(ctx, updated)
}

func (s *Service) DeleteSale(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.DeleteSale(ctx, id)
}

// categoryStock is the single read-through aggregation shared by the
// inventory views and the sale-creation guard.
func (s *Service) categoryStock(ctx context.Context, categoryID string) (analytics.Stock, error) {
	purchases, err := s.repo.ListPurchases(ctx, store.TransactionFilter{CategoryID: categoryID})
	if err != nil {
		return analytics.Stock{}, err
	}
	sales, err := s.repo.ListSales(ctx, store.TransactionFilter{CategoryID: categoryID})
	if err != nil {
		return analytics.Stock{}, err
	}
	return analytics.ComputeStock(purchases, sales), nil
}

func buildTransactionFilter(categoryID, startRaw, endRaw string) (store.TransactionFilter, error) {
	filter := store.TransactionFilter{CategoryID: strings.TrimSpace(categoryID)}
	if startRaw != "" {
		start, err := parseDate(startRaw)
		if err != nil {
			return store.TransactionFilter{}, err
		}
		filter.From = &start
	}
	if endRaw != "" {
		end, err := parseDate(endRaw)
		if err != nil {
			return store.TransactionFilter{}, err
		}
		inclusive := endOfDay(end)
		filter.To = &inclusive
	}
	return filter, nil
}

// ---- Inventory ----

func (s *Service) Inventory(ctx context.Context) (*domain.InventoryResponse, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	purchases, err := s.repo.ListPurchases(ctx, store.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.ListSales(ctx, store.TransactionFilter{})
	if err != nil {
		return nil, err
	}

	purchasesByCat := make(map[string][]domain.Purchase)
	for _, p := range purchases {
		purchasesByCat[p.CategoryID] = append(purchasesByCat[p.CategoryID], p)
	}
	salesByCat := make(map[string][]domain.Sale)
	for _, sale := range sales {
		salesByCat[sale.CategoryID] = append(salesByCat[sale.CategoryID], sale)
	}

	resp := &domain.InventoryResponse{Inventory: make([]domain.CategoryStock, 0, len(categories))}
	var totalStockValue, totalPotentialValue float64

	for _, category := range categories {
		stock := analytics.ComputeStock(purchasesByCat[category.ID], salesByCat[category.ID])
		resp.Inventory = append(resp.Inventory, domain.CategoryStock{
			CategoryID:      category.ID,
			Category:        category.Name,
			TotalBought:     stock.TotalBought,
			TotalSold:       stock.TotalSold,
			Remaining:       stock.Remaining,
			AvgCostPerItem:  stock.AvgCostPerItem,
			AvgSellingPrice: stock.AvgSellingPrice,
			CostValue:       stock.CostValue,
			SellingValue:    stock.SellingValue,
		})
		resp.Summary.TotalRemainingItems += stock.Remaining
		totalStockValue += stock.CostValue
		totalPotentialValue += stock.SellingValue
	}

	resp.Summary.TotalStockValue = analytics.Round2(totalStockValue)
	resp.Summary.TotalPotentialValue = analytics.Round2(totalPotentialValue)
	resp.Summary.TotalCategories = len(categories)
	return resp, nil
}

func (s *Service) CategoryInventory(ctx context.Context, categoryID string) (*domain.CategoryInventoryResponse, error) {
	category, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	purchases, err := s.repo.ListPurchases(ctx, store.TransactionFilter{CategoryID: category.ID})
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.ListSales(ctx, store.TransactionFilter{CategoryID: category.ID})
	if err != nil {
		return nil, err
	}

	stock := analytics.ComputeStock(purchases, sales)
	return &domain.CategoryInventoryResponse{
		CategoryID:      category.ID,
		Category:        category.Name,
		TotalBought:     stock.TotalBought,
		TotalSold:       stock.TotalSold,
		Remaining:       stock.Remaining,
		AvgCostPerItem:  stock.AvgCostPerItem,
		AvgSellingPrice: stock.AvgSellingPrice,
		Purchases:       purchases,
		Sales:           sales,
	}, nil
}

// ---- Dashboard ----

func (s *Service) Dashboard(ctx context.Context) (*domain.DashboardResponse, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	purchases, err := s.repo.ListPurchases(ctx, store.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.ListSales(ctx, store.TransactionFilter{})
	if err != nil {
		return nil, err
	}

	var totalPurchaseCost, totalRevenue float64
	var totalPurchasedItems, totalSoldItems int
	for _, p := range purchases {
		totalPurchaseCost += p.TotalCost
		totalPurchasedItems += p.Quantity
	}
	for _, sale := range sales {
		totalRevenue += sale.TotalAmount
		totalSoldItems += sale.Quantity
	}

	profit := totalRevenue - totalPurchaseCost
	profitMargin := 0.0
	if totalRevenue > 0 {
		profitMargin = profit / totalRevenue * 100
	}

	resp := &domain.DashboardResponse{
		Summary: domain.DashboardSummary{
			TotalCategories:     len(categories),
			TotalPurchases:      len(purchases),
			TotalSales:          len(sales),
			TotalPurchaseCost:   analytics.Round2(totalPurchaseCost),
			TotalRevenue:        analytics.Round2(totalRevenue),
			Profit:              analytics.Round2(profit),
			ProfitMargin:        analytics.Round2(profitMargin),
			TotalPurchasedItems: totalPurchasedItems,
			TotalSoldItems:      totalSoldItems,
			RemainingStock:      totalPurchasedItems - totalSoldItems,
		},
		TopCategories:    topCategories(sales),
		RecentPurchases:  recentPurchases(purchases, 5),
		RecentSales:      recentSales(sales, 5),
		MonthlySales:     monthlySales(sales),
		MonthlyPurchases: monthlyPurchases(purchases),
		LowStockItems:    lowStockItems(categories, purchases, sales),
	}
	return resp, nil
}

// topCategories groups sales per category and keeps the ten highest by
// revenue. Ties keep grouping order (first occurrence in the sale list);
// the sort is stable on purpose.
func topCategories(sales []domain.Sale) []domain.TopCategory {
	type group struct {
		name     string
		revenue  float64
		quantity int
		count    int
	}
	order := make([]string, 0)
	groups := make(map[string]*group)

	for _, sale := range sales {
		g, ok := groups[sale.CategoryID]
		if !ok {
			g = &group{name: sale.CategoryName}
			groups[sale.CategoryID] = g
			order = append(order, sale.CategoryID)
		}
		g.revenue += sale.TotalAmount
		g.quantity += sale.Quantity
		g.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return groups[order[i]].revenue > groups[order[j]].revenue
	})
	if len(order) > 10 {
		order = order[:10]
	}

	top := make([]domain.TopCategory, 0, len(order))
	for _, id := range order {
		g := groups[id]
		top = append(top, domain.TopCategory{
			Category:     g.name,
			Revenue:      analytics.Round2(g.revenue),
			Quantity:     g.quantity,
			Transactions: g.count,
		})
	}
	return top
}

func recentPurchases(purchases []domain.Purchase, limit int) []domain.Purchase {
	sorted := make([]domain.Purchase, len(purchases))
	copy(sorted, purchases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func recentSales(sales []domain.Sale, limit int) []domain.Sale {
	sorted := make([]domain.Sale, len(sales))
	copy(sorted, sales)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func monthlySales(sales []domain.Sale) []domain.MonthlySales {
	cutoff := time.Now().AddDate(0, -6, 0)
	type key struct{ year, month int }
	groups := make(map[key]*domain.MonthlySales)

	for _, sale := range sales {
		if sale.Date.Before(cutoff) {
			continue
		}
		k := key{sale.Date.Local().Year(), int(sale.Date.Local().Month())}
		g, ok := groups[k]
		if !ok {
			g = &domain.MonthlySales{Year: k.year, Month: k.month}
			groups[k] = g
		}
		g.Revenue += sale.TotalAmount
		g.Quantity += sale.Quantity
		g.Transactions++
	}

	result := make([]domain.MonthlySales, 0, len(groups))
	for _, g := range groups {
		g.Revenue = analytics.Round2(g.Revenue)
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Month < result[j].Month
	})
	return result
}

func monthlyPurchases(purchases []domain.Purchase) []domain.MonthlyPurchases {
	cutoff := time.Now().AddDate(0, -6, 0)
	type key struct{ year, month int }
	groups := make(map[key]*domain.MonthlyPurchases)

	for _, p := range purchases {
		if p.Date.Before(cutoff) {
			continue
		}
		k := key{p.Date.Local().Year(), int(p.Date.Local().Month())}
		g, ok := groups[k]
		if !ok {
			g = &domain.MonthlyPurchases{Year: k.year, Month: k.month}
			groups[k] = g
		}
		g.Cost += p.TotalCost
		g.Quantity += p.Quantity
		g.Transactions++
	}

	result := make([]domain.MonthlyPurchases, 0, len(groups))
	for _, g := range groups {
		g.Cost = analytics.Round2(g.Cost)
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Month < result[j].Month
	})
	return result
}

func lowStockItems(categories []domain.Category, purchases []domain.Purchase, sales []domain.Sale) []domain.LowStockItem {
	boughtByCat := make(map[string]int)
	for _, p := range purchases {
		boughtByCat[p.CategoryID] += p.Quantity
	}
	soldByCat := make(map[string]int)
	for _, sale := range sales {
		soldByCat[sale.CategoryID] += sale.Quantity
	}

	items := make([]domain.LowStockItem, 0)
	for _, category := range categories {
		remaining := boughtByCat[category.ID] - soldByCat[category.ID]
		if remaining > 0 && remaining <= 10 {
			items = append(items, domain.LowStockItem{Category: category.Name, Remaining: remaining})
		}
	}
	return items
}

// ---- Sales analytics ----

func (s *Service) WeeklySales(ctx context.Context, startRaw, endRaw string) (*domain.WeeklyAnalyticsResponse, error) {
	sales, closures, err := s.loadWindow(ctx, startRaw, endRaw, defaultWeeklyWindowDays)
	if err != nil {
		return nil, err
	}
	resp := analytics.BuildWeeklyReport(sales, closures)
	return &resp, nil
}

func (s *Service) DailySales(ctx context.Context, startRaw, endRaw string) (*domain.DailyAnalyticsResponse, error) {
	start, end, err := parseRange(startRaw, endRaw, defaultDailyWindowDays)
	if err != nil {
		return nil, err
	}
	sales, closures, err := s.loadRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	resp := analytics.BuildDailyReport(sales, closures, start, end)
	return &resp, nil
}

func (s *Service) DayOfWeekSales(ctx context.Context, startRaw, endRaw string) (*domain.DayOfWeekAnalyticsResponse, error) {
	start, end, err := parseRange(startRaw, endRaw, defaultDayOfWeekWindowDays)
	if err != nil {
		return nil, err
	}
	sales, closures, err := s.loadRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	resp := analytics.BuildDayOfWeekReport(sales, closures, start, end)
	return &resp, nil
}

func (s *Service) loadWindow(ctx context.Context, startRaw, endRaw string, windowDays int) ([]domain.Sale, []domain.ShopClosure, error) {
	start, end, err := parseRange(startRaw, endRaw, windowDays)
	if err != nil {
		return nil, nil, err
	}
	return s.loadRange(ctx, start, end)
}

func (s *Service) loadRange(ctx context.Context, start, end time.Time) ([]domain.Sale, []domain.ShopClosure, error) {
	sales, err := s.repo.ListSales(ctx, store.TransactionFilter{From: &start, To: &end})
	if err != nil {
		return nil, nil, err
	}
	closures, err := s.repo.ListClosures(ctx, store.ClosureFilter{From: &start, To: &end})
	if err != nil {
		return nil, nil, err
	}
	return sales, closures, nil
}

// ---- Shop closures ----

func (s *Service) ListClosures(ctx context.Context, startRaw, endRaw string) ([]domain.ShopClosure, error) {
	filter := store.ClosureFilter{}
	if startRaw != "" {
		start, err := parseDate(startRaw)
		if err != nil {
			return nil, err
		}
		filter.From = &start
	}
	if endRaw != "" {
		end, err := parseDate(endRaw)
		if err != nil {
			return nil, err
		}
		inclusive := endOfDay(end)
		filter.To = &inclusive
	}
	return s.repo.ListClosures(ctx, filter)
}

func (s *Service) GetClosure(ctx context.Context, id string) (*domain.ShopClosure, error) {
	return s.repo.GetClosure(ctx, id)
}

func (s *Service) CreateClosure(ctx context.Context, req domain.ClosureCreateRequest) (*domain.ShopClosure, error) {
	if req.Date == "" || req.Reason == "" {
		return nil, fmt.Errorf("date and reason are required: %w", store.ErrValidation)
	}
	if !domain.IsValidClosureReason(req.Reason) {
		return nil, fmt.Errorf("invalid closure reason %q: %w", req.Reason, store.ErrValidation)
	}
	if req.ClosedHours < 0 || req.ClosedHours > 24 {
		return nil, fmt.Errorf("closedHours must be between 0 and 24: %w", store.ErrValidation)
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindClosureByDay(ctx, date, ""); err == nil {
		return nil, fmt.Errorf("shop closure already exists for this date: %w", store.ErrValidation)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	isFullDay := true
	if req.IsFullDay != nil {
		isFullDay = *req.IsFullDay
	}

	closure := domain.ShopClosure{
		ID:          xid.New("cls"),
		Date:        date,
		Reason:      req.Reason,
		Description: strings.TrimSpace(req.Description),
		IsFullDay:   isFullDay,
		ClosedHours: req.ClosedHours,
		CreatedAt:   time.Now(),
	}
	return s.repo.CreateClosure(ctx, closure)
}

func (s *Service) UpdateClosure(ctx context.Context, id string, req domain.ClosureUpdateRequest) (*domain.ShopClosure, error) {
	existing, err := s.repo.GetClosure(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		if _, err := s.repo.FindClosureByDay(ctx, date, id); err == nil {
			return nil, fmt.Errorf("shop closure already exists for this date: %w", store.ErrValidation)
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		updated.Date = date
	}
	if req.Reason != nil {
		if !domain.IsValidClosureReason(*req.Reason) {
			return nil, fmt.Errorf("invalid closure reason %q: %w", *req.Reason, store.ErrValidation)
		}
		updated.Reason = *req.Reason
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsFullDay != nil {
		updated.IsFullDay = *req.IsFullDay
	}
	if req.ClosedHours != nil {
		if *req.ClosedHours < 0 || *req.ClosedHours > 24 {
			return nil, fmt.Errorf("closedHours must be between 0 and 24: %w", store.ErrValidation)
		}
		updated.ClosedHours = *req.ClosedHours
	}

	return s.repo.UpdateClosure(ctx, updated)
}

func (s *Service) DeleteClosure(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.DeleteClosure(ctx, id)
}

func (s *Service) ClosureStats(ctx context.Context, startRaw, endRaw string) (*domain.ClosureStatsResponse, error) {
	start, end, err := parseRange(startRaw, endRaw, defaultClosureStatsDays)
	if err != nil {
		return nil, err
	}

	closures, err := s.repo.ListClosures(ctx, store.ClosureFilter{From: &start, To: &end})
	if err != nil {
		return nil, err
	}

	stats := domain.ClosureStats{
		TotalClosures: len(closures),
		ByReason:      make(map[string]int),
		DateRange: domain.DateRange{
			Start: analytics.DayKey(start),
			End:   analytics.DayKey(end),
		},
	}
	for _, c := range closures {
		stats.ByReason[c.Reason]++
		if c.IsFullDay {
			stats.TotalFullDays++
		} else {
			stats.TotalPartialDays++
		}
	}

	return &domain.ClosureStatsResponse{Success: true, Data: stats}, nil
}
