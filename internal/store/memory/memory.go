package memory

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"tokoledger/backend/internal/domain"
	"tokoledger/backend/internal/store"
	"tokoledger/backend/internal/xid"
)

// Store is the in-memory repository used when DATABASE_URL is unset and
// by the unit tests.
type Store struct {
	mu         sync.RWMutex
	categories map[string]domain.Category
	purchases  map[string]domain.Purchase
	sales      map[string]domain.Sale
	closures   map[string]domain.ShopClosure
	users      map[string]domain.UserAccount
}

func New() *Store {
	return &Store{
		categories: make(map[string]domain.Category),
		purchases:  make(map[string]domain.Purchase),
		sales:      make(map[string]domain.Sale),
		closures:   make(map[string]domain.ShopClosure),
		users:      make(map[string]domain.UserAccount),
	}
}

// NewSeeded returns a store preloaded with a small demo ledger and the
// default dev accounts.
func NewSeeded() *Store {
	s := New()
	now := time.Now()

	categories := []string{"Beras", "Minyak Goreng", "Gula"}
	catIDs := make(map[string]string, len(categories))
	for _, name := range categories {
		id := xid.New("cat")
		catIDs[name] = id
		s.categories[id] = domain.Category{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	}

	purchases := []struct {
		category string
		daysAgo  int
		qty      int
		cost     float64
		selling  float64
		supplier string
	}{
		{"Beras", 21, 100, 5000, 60, "CV Sumber Pangan"},
		{"Beras", 7, 50, 2600, 62, "CV Sumber Pangan"},
		{"Minyak Goreng", 14, 40, 1400, 42, "Toko Grosir Jaya"},
		{"Gula", 10, 60, 900, 18, "Toko Grosir Jaya"},
	}
	for _, p := range purchases {
		purchase := domain.Purchase{
			ID:                  xid.New("pur"),
			Date:                now.AddDate(0, 0, -p.daysAgo),
			CategoryID:          catIDs[p.category],
			CategoryName:        p.category,
			Quantity:            p.qty,
			TotalCost:           p.cost,
			SellingPricePerItem: p.selling,
			Supplier:            p.supplier,
			CreatedAt:           now.AddDate(0, 0, -p.daysAgo),
		}
		purchase.Recalc()
		s.purchases[purchase.ID] = purchase
	}

	sales := []struct {
		category string
		daysAgo  int
		qty      int
		price    float64
	}{
		{"Beras", 5, 30, 60},
		{"Beras", 2, 12, 62},
		{"Minyak Goreng", 3, 8, 42},
		{"Gula", 1, 15, 18},
	}
	for _, raw := range sales {
		sale := domain.Sale{
			ID:                  xid.New("sal"),
			Date:                now.AddDate(0, 0, -raw.daysAgo),
			CategoryID:          catIDs[raw.category],
			CategoryName:        raw.category,
			Quantity:            raw.qty,
			SellingPricePerItem: raw.price,
			CreatedAt:           now.AddDate(0, 0, -raw.daysAgo),
		}
		sale.Recalc()
		s.sales[sale.ID] = sale
	}

	closure := domain.ShopClosure{
		ID:          xid.New("cls"),
		Date:        now.AddDate(0, 0, -4),
		Reason:      domain.ReasonHoliday,
		Description: "Public holiday",
		IsFullDay:   true,
		CreatedAt:   now,
	}
	s.closures[closure.ID] = closure

	s.seedUsers()
	return s
}

// seedUsers creates dev/demo accounts. Passwords come from
// SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD; hardcoded defaults are
// dev-only (production deployments run on PostgreSQL).
func (s *Store) seedUsers() {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Warn().Msg("memory store using default dev credentials; set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override")
	}

	now := time.Now().UTC()
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"staff", staffPwd, domain.RoleStaff},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Str("username", u.username).Msg("failed to hash seed password")
		}
		s.users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

func matchTransaction(date time.Time, categoryID string, filter store.TransactionFilter) bool {
	if filter.CategoryID != "" && categoryID != filter.CategoryID {
		return false
	}
	if filter.From != nil && date.Before(*filter.From) {
		return false
	}
	if filter.To != nil && date.After(*filter.To) {
		return false
	}
	return true
}

// Listing order matches the original API: date descending, then creation
// time descending.
func byDateDesc(aDate, aCreated, bDate, bCreated time.Time) int {
	if !aDate.Equal(bDate) {
		if aDate.After(bDate) {
			return -1
		}
		return 1
	}
	if aCreated.After(bCreated) {
		return -1
	}
	if aCreated.Before(bCreated) {
		return 1
	}
	return 0
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	slices.SortFunc(categories, func(a, b domain.Category) int {
		return byDateDesc(a.CreatedAt, a.CreatedAt, b.CreatedAt, b.CreatedAt)
	})
	return categories, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) FindCategoryByName(_ context.Context, name string, excludeID string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.ID != excludeID && strings.EqualFold(c.Name, name) {
			found := c
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	if category.ID == "" || category.Name == "" {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories[category.ID] = category
	created := category
	return &created, nil
}

func (s *Store) UpdateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	if category.ID == "" || category.Name == "" {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[category.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.categories[category.ID] = category
	updated := category
	return &updated, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	// No cascade: purchases and sales keep their denormalized category name.
	delete(s.categories, id)
	return nil
}

func (s *Store) ListPurchases(_ context.Context, filter store.TransactionFilter) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchases := make([]domain.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		if matchTransaction(p.Date, p.CategoryID, filter) {
			purchases = append(purchases, p)
		}
	}
	slices.SortFunc(purchases, func(a, b domain.Purchase) int {
		return byDateDesc(a.Date, a.CreatedAt, b.Date, b.CreatedAt)
	})
	return purchases, nil
}

func (s *Store) GetPurchase(_ context.Context, id string) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.purchases[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) CreatePurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	if purchase.ID == "" || purchase.CategoryID == "" || purchase.Quantity < 1 || purchase.TotalCost < 0 || purchase.SellingPricePerItem < 0 {
		return nil, store.ErrValidation
	}
	purchase.Recalc()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.purchases[purchase.ID] = purchase
	created := purchase
	return &created, nil
}

func (s *Store) UpdatePurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	if purchase.ID == "" || purchase.Quantity < 1 || purchase.TotalCost < 0 || purchase.SellingPricePerItem < 0 {
		return nil, store.ErrValidation
	}
	purchase.Recalc()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.purchases[purchase.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.purchases[purchase.ID] = purchase
	updated := purchase
	return &updated, nil
}

func (s *Store) DeletePurchase(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.purchases[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.purchases, id)
	return nil
}

func (s *Store) ListSales(_ context.Context, filter store.TransactionFilter) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if matchTransaction(sale.Date, sale.CategoryID, filter) {
			sales = append(sales, sale)
		}
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		return byDateDesc(a.Date, a.CreatedAt, b.Date, b.CreatedAt)
	})
	return sales, nil
}

func (s *Store) GetSale(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sale, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ID == "" || sale.CategoryID == "" || sale.Quantity < 1 || sale.SellingPricePerItem < 0 {
		return nil, store.ErrValidation
	}
	sale.Recalc()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sales[sale.ID] = sale
	created := sale
	return &created, nil
}

func (s *Store) UpdateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ID == "" || sale.Quantity < 1 || sale.SellingPricePerItem < 0 {
		return nil, store.ErrValidation
	}
	sale.Recalc()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sales[sale.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.sales[sale.ID] = sale
	updated := sale
	return &updated, nil
}

func (s *Store) DeleteSale(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sales[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.sales, id)
	return nil
}

func (s *Store) ListClosures(_ context.Context, filter store.ClosureFilter) ([]domain.ShopClosure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	closures := make([]domain.ShopClosure, 0, len(s.closures))
	for _, c := range s.closures {
		if filter.From != nil && c.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && c.Date.After(*filter.To) {
			continue
		}
		closures = append(closures, c)
	}
	slices.SortFunc(closures, func(a, b domain.ShopClosure) int {
		return byDateDesc(a.Date, a.CreatedAt, b.Date, b.CreatedAt)
	})
	return closures, nil
}

func (s *Store) GetClosure(_ context.Context, id string) (*domain.ShopClosure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.closures[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) FindClosureByDay(_ context.Context, day time.Time, excludeID string) (*domain.ShopClosure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := dayKey(day)
	for _, c := range s.closures {
		if c.ID != excludeID && dayKey(c.Date) == key {
			found := c
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateClosure(_ context.Context, closure domain.ShopClosure) (*domain.ShopClosure, error) {
	if closure.ID == "" || closure.Reason == "" {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey(closure.Date)
	for _, existing := range s.closures {
		if dayKey(existing.Date) == key {
			return nil, store.ErrValidation
		}
	}
	s.closures[closure.ID] = closure
	created := closure
	return &created, nil
}

func (s *Store) UpdateClosure(_ context.Context, closure domain.ShopClosure) (*domain.ShopClosure, error) {
	if closure.ID == "" || closure.Reason == "" {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.closures[closure.ID]; !ok {
		return nil, store.ErrNotFound
	}
	key := dayKey(closure.Date)
	for _, existing := range s.closures {
		if existing.ID != closure.ID && dayKey(existing.Date) == key {
			return nil, store.ErrValidation
		}
	}
	s.closures[closure.ID] = closure
	updated := closure
	return &updated, nil
}

func (s *Store) DeleteClosure(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.closures[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.closures, id)
	return nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return store.ErrValidation
	}
	s.users[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = password
	s.users[username] = u
	return nil
}
