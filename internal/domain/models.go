package domain

import "time"

// Category groups purchases and sales. Its name is copied onto every
// transaction at creation time so a later rename does not rewrite history.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CategoryCreateRequest struct {
	Name string `json:"name"`
}

type CategoryUpdateRequest struct {
	Name *string `json:"name,omitempty"`
}

type Purchase struct {
	ID                  string    `json:"id"`
	Date                time.Time `json:"date"`
	CategoryID          string    `json:"categoryId"`
	CategoryName        string    `json:"categoryName"`
	Quantity            int       `json:"quantity"`
	TotalCost           float64   `json:"totalCost"`
	CostPerItem         float64   `json:"costPerItem"`
	SellingPricePerItem float64   `json:"sellingPricePerItem"`
	Supplier            string    `json:"supplier"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Recalc refreshes the derived cost-per-item field. Stores call this on
// every create and update; the field is never independently settable.
func (p *Purchase) Recalc() {
	if p.Quantity > 0 {
		p.CostPerItem = p.TotalCost / float64(p.Quantity)
	} else {
		p.CostPerItem = 0
	}
}

// CategoryName is accepted because existing clients send it, but the
// stored snapshot always comes from the resolved category, never from
// the request body.
type PurchaseCreateRequest struct {
	Date                string  `json:"date,omitempty"`
	CategoryID          string  `json:"categoryId"`
	CategoryName        string  `json:"categoryName,omitempty"`
	Quantity            int     `json:"quantity"`
	TotalCost           float64 `json:"totalCost"`
	SellingPricePerItem float64 `json:"sellingPricePerItem"`
	Supplier            string  `json:"supplier,omitempty"`
}

type PurchaseUpdateRequest struct {
	Date                *string  `json:"date,omitempty"`
	CategoryID          *string  `json:"categoryId,omitempty"`
	Quantity            *int     `json:"quantity,omitempty"`
	TotalCost           *float64 `json:"totalCost,omitempty"`
	SellingPricePerItem *float64 `json:"sellingPricePerItem,omitempty"`
	Supplier            *string  `json:"supplier,omitempty"`
}

type Sale struct {
	ID                  string    `json:"id"`
	Date                time.Time `json:"date"`
	CategoryID          string    `json:"categoryId"`
	CategoryName        string    `json:"categoryName"`
	Quantity            int       `json:"quantity"`
	SellingPricePerItem float64   `json:"sellingPricePerItem"`
	TotalAmount         float64   `json:"totalAmount"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Recalc refreshes the derived total-amount field.
func (s *Sale) Recalc() {
	s.TotalAmount = float64(s.Quantity) * s.SellingPricePerItem
}

// CategoryName is accepted for client compatibility and ignored in favor
// of the resolved category's name, same as purchases.
type SaleCreateRequest struct {
	Date                string  `json:"date,omitempty"`
	CategoryID          string  `json:"categoryId"`
	CategoryName        string  `json:"categoryName,omitempty"`
	Quantity            int     `json:"quantity"`
	SellingPricePerItem float64 `json:"sellingPricePerItem"`
}

type SaleUpdateRequest struct {
	Date                *string  `json:"date,omitempty"`
	CategoryID          *string  `json:"categoryId,omitempty"`
	Quantity            *int     `json:"quantity,omitempty"`
	SellingPricePerItem *float64 `json:"sellingPricePerItem,omitempty"`
}

// ShopClosure marks a calendar day the shop did not operate. At most one
// closure exists per day. ClosedHours is informational for partial
// closures and never affects weighting.
type ShopClosure struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
	IsFullDay   bool      `json:"isFullDay"`
	ClosedHours float64   `json:"closedHours"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ClosureCreateRequest struct {
	Date        string  `json:"date"`
	Reason      string  `json:"reason"`
	Description string  `json:"description,omitempty"`
	IsFullDay   *bool   `json:"isFullDay,omitempty"`
	ClosedHours float64 `json:"closedHours,omitempty"`
}

type ClosureUpdateRequest struct {
	Date        *string  `json:"date,omitempty"`
	Reason      *string  `json:"reason,omitempty"`
	Description *string  `json:"description,omitempty"`
	IsFullDay   *bool    `json:"isFullDay,omitempty"`
	ClosedHours *float64 `json:"closedHours,omitempty"`
}

const (
	ReasonLeave       = "Leave"
	ReasonHoliday     = "Holiday"
	ReasonSickLeave   = "Sick Leave"
	ReasonEmergency   = "Emergency"
	ReasonMaintenance = "Maintenance"
	ReasonOther       = "Other"
)

var ClosureReasons = []string{
	ReasonLeave, ReasonHoliday, ReasonSickLeave,
	ReasonEmergency, ReasonMaintenance, ReasonOther,
}

func IsValidClosureReason(reason string) bool {
	for _, r := range ClosureReasons {
		if reason == r {
			return true
		}
	}
	return false
}

// CategoryStock is the derived per-category snapshot: quantities from the
// ledger plus valuation at average cost and average selling price.
type CategoryStock struct {
	CategoryID      string  `json:"categoryId"`
	Category        string  `json:"category"`
	TotalBought     int     `json:"totalBought"`
	TotalSold       int     `json:"totalSold"`
	Remaining       int     `json:"remaining"`
	AvgCostPerItem  float64 `json:"avgCostPerItem"`
	AvgSellingPrice float64 `json:"avgSellingPrice"`
	CostValue       float64 `json:"costValue"`
	SellingValue    float64 `json:"sellingValue"`
}

type InventorySummary struct {
	TotalRemainingItems int     `json:"totalRemainingItems"`
	TotalStockValue     float64 `json:"totalStockValue"`
	TotalPotentialValue float64 `json:"totalPotentialValue"`
	TotalCategories     int     `json:"totalCategories"`
}

type InventoryResponse struct {
	Inventory []CategoryStock  `json:"inventory"`
	Summary   InventorySummary `json:"summary"`
}

type CategoryInventoryResponse struct {
	CategoryID      string     `json:"categoryId"`
	Category        string     `json:"category"`
	TotalBought     int        `json:"totalBought"`
	TotalSold       int        `json:"totalSold"`
	Remaining       int        `json:"remaining"`
	AvgCostPerItem  float64    `json:"avgCostPerItem"`
	AvgSellingPrice float64    `json:"avgSellingPrice"`
	Purchases       []Purchase `json:"purchases"`
	Sales           []Sale     `json:"sales"`
}

type DashboardSummary struct {
	TotalCategories     int     `json:"totalCategories"`
	TotalPurchases      int     `json:"totalPurchases"`
	TotalSales          int     `json:"totalSales"`
	TotalPurchaseCost   float64 `json:"totalPurchaseCost"`
	TotalRevenue        float64 `json:"totalRevenue"`
	Profit              float64 `json:"profit"`
	ProfitMargin        float64 `json:"profitMargin"`
	TotalPurchasedItems int     `json:"totalPurchasedItems"`
	TotalSoldItems      int     `json:"totalSoldItems"`
	RemainingStock      int     `json:"remainingStock"`
}

type TopCategory struct {
	Category     string  `json:"category"`
	Revenue      float64 `json:"revenue"`
	Quantity     int     `json:"quantity"`
	Transactions int     `json:"transactions"`
}

type MonthlySales struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Revenue      float64 `json:"revenue"`
	Quantity     int     `json:"quantity"`
	Transactions int     `json:"transactions"`
}

type MonthlyPurchases struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Cost         float64 `json:"cost"`
	Quantity     int     `json:"quantity"`
	Transactions int     `json:"transactions"`
}

type LowStockItem struct {
	Category  string `json:"category"`
	Remaining int    `json:"remaining"`
}

type DashboardResponse struct {
	Summary          DashboardSummary   `json:"summary"`
	TopCategories    []TopCategory      `json:"topCategories"`
	RecentPurchases  []Purchase         `json:"recentPurchases"`
	RecentSales      []Sale             `json:"recentSales"`
	MonthlySales     []MonthlySales     `json:"monthlySales"`
	MonthlyPurchases []MonthlyPurchases `json:"monthlyPurchases"`
	LowStockItems    []LowStockItem     `json:"lowStockItems"`
}

// WeeklyBucket aggregates one Monday-keyed week. Revenue and averages are
// fixed two-decimal strings; the daily view keeps them numeric.
type WeeklyBucket struct {
	WeekStart                string  `json:"weekStart"`
	WeekLabel                string  `json:"weekLabel"`
	TotalRevenue             string  `json:"totalRevenue"`
	TotalQuantity            int     `json:"totalQuantity"`
	TransactionCount         int     `json:"transactionCount"`
	ClosedDays               float64 `json:"closedDays"`
	OpenDays                 float64 `json:"openDays"`
	AverageRevenuePerOpenDay string  `json:"averageRevenuePerOpenDay"`
	AveragePerTransaction    string  `json:"averagePerTransaction"`
}

type WeeklySummary struct {
	TotalWeeks           int    `json:"totalWeeks"`
	TotalRevenue         string `json:"totalRevenue"`
	TotalTransactions    int    `json:"totalTransactions"`
	AverageWeeklyRevenue string `json:"averageWeeklyRevenue"`
}

type WeeklyAnalyticsResponse struct {
	Success bool           `json:"success"`
	Data    []WeeklyBucket `json:"data"`
	Summary WeeklySummary  `json:"summary"`
}

type ClosureInfo struct {
	Reason      string  `json:"reason"`
	Description string  `json:"description"`
	IsFullDay   bool    `json:"isFullDay"`
	ClosedHours float64 `json:"closedHours"`
}

type DailyBucket struct {
	Date             string       `json:"date"`
	DayOfWeek        string       `json:"dayOfWeek"`
	TotalRevenue     float64      `json:"totalRevenue"`
	TotalQuantity    int          `json:"totalQuantity"`
	TransactionCount int          `json:"transactionCount"`
	IsClosed         bool         `json:"isClosed"`
	ClosureInfo      *ClosureInfo `json:"closureInfo"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DailySummary struct {
	DateRange         DateRange `json:"dateRange"`
	TotalRevenue      float64   `json:"totalRevenue"`
	TotalQuantity     int       `json:"totalQuantity"`
	TotalTransactions int       `json:"totalTransactions"`
	OpenDays          float64   `json:"openDays"`
	ClosedDays        float64   `json:"closedDays"`
}

type DailyAnalyticsResponse struct {
	Success bool          `json:"success"`
	Data    []DailyBucket `json:"data"`
	Summary DailySummary  `json:"summary"`
}

type DayOfWeekBucket struct {
	DayName               string `json:"dayName"`
	TotalRevenue          string `json:"totalRevenue"`
	TotalQuantity         int    `json:"totalQuantity"`
	TransactionCount      int    `json:"transactionCount"`
	TotalOccurrences      int    `json:"totalOccurrences"`
	OpenCount             int    `json:"openCount"`
	AveragePerTransaction string `json:"averagePerTransaction"`
	AveragePerOpenDay     string `json:"averagePerOpenDay"`
}

type DayHighlight struct {
	Name    string `json:"name"`
	Revenue string `json:"revenue"`
}

type DayOfWeekSummary struct {
	DateRange         DateRange    `json:"dateRange"`
	TotalRevenue      string       `json:"totalRevenue"`
	TotalTransactions int          `json:"totalTransactions"`
	BestDay           DayHighlight `json:"bestDay"`
	WorstDay          DayHighlight `json:"worstDay"`
}

type DayOfWeekAnalyticsResponse struct {
	Success bool              `json:"success"`
	Data    []DayOfWeekBucket `json:"data"`
	Summary DayOfWeekSummary  `json:"summary"`
}

type ClosureStats struct {
	TotalClosures    int            `json:"totalClosures"`
	TotalFullDays    int            `json:"totalFullDays"`
	TotalPartialDays int            `json:"totalPartialDays"`
	ByReason         map[string]int `json:"byReason"`
	DateRange        DateRange      `json:"dateRange"`
}

type ClosureStatsResponse struct {
	Success bool         `json:"success"`
	Data    ClosureStats `json:"data"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expiresAt"`
}

type Actor struct {
	Username string
	Role     string
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserInfo struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)
