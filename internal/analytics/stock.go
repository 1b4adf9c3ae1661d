package analytics

import "tokoledger/backend/internal/domain"

// Stock is the derived position for one category, recomputed from the
// full purchase/sale history on every call. Remaining may go negative
// when sales outrun purchases; that is a displayable state, not an error.
type Stock struct {
	TotalBought     int
	TotalSold       int
	Remaining       int
	TotalCost       float64
	AvgCostPerItem  float64
	AvgSellingPrice float64
	CostValue       float64
	SellingValue    float64
}

// ComputeStock derives quantities and valuation from the ledgers.
//
// AvgSellingPrice is the plain arithmetic mean of sellingPricePerItem over
// purchase records, NOT weighted by quantity. Both inventory views and the
// expected front-end figures depend on this exact averaging.
func ComputeStock(purchases []domain.Purchase, sales []domain.Sale) Stock {
	var st Stock
	var sellingSum float64

	for _, p := range purchases {
		st.TotalBought += p.Quantity
		st.TotalCost += p.TotalCost
		sellingSum += p.SellingPricePerItem
	}
	for _, s := range sales {
		st.TotalSold += s.Quantity
	}
	st.Remaining = st.TotalBought - st.TotalSold

	if st.TotalBought > 0 {
		st.AvgCostPerItem = st.TotalCost / float64(st.TotalBought)
	}
	if len(purchases) > 0 {
		st.AvgSellingPrice = sellingSum / float64(len(purchases))
	}

	st.CostValue = Round2(float64(st.Remaining) * st.AvgCostPerItem)
	st.SellingValue = Round2(float64(st.Remaining) * st.AvgSellingPrice)
	st.AvgCostPerItem = Round2(st.AvgCostPerItem)
	st.AvgSellingPrice = Round2(st.AvgSellingPrice)

	return st
}
