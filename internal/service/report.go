package service

import (
	"context"
	"sort"

	"lekhajokha/backend/internal/domain"
	"lekhajokha/backend/internal/store"
)

// inRange does a lexical comparison; ledger dates are ISO "2006-01-02"
// strings, so lexical order is date order.
func inRange(date, from, to string) bool {
	return date >= from && date <= to
}

// averageCosts computes the average unit cost per product over every
// Inventory purchase ever recorded, not only those in the report range.
// Stock sold during the period may have been bought before it; a range-bound
// average would misprice that stock.
func averageCosts(purchases []domain.Purchase) map[string]float64 {
	amounts := make(map[string]float64)
	quantities := make(map[string]int)
	for _, p := range purchases {
		if p.Type != domain.PurchaseTypeInventory || p.Quantity < 1 {
			continue
		}
		amounts[p.ProductID] += p.Amount
		quantities[p.ProductID] += p.Quantity
	}

	costs := make(map[string]float64, len(amounts))
	for productID, amount := range amounts {
		costs[productID] = amount / float64(quantities[productID])
	}
	return costs
}

type lineTotals struct {
	quantity int
	revenue  float64
	paid     float64
}

// BuildReport aggregates the ledger over [from, to] inclusive: revenue and
// collection on the sales side, expenses and COGS on the purchase side, plus
// the current stock valuation at average purchase cost.
func (s *Service) BuildReport(ctx context.Context, from, to string) (domain.Report, error) {
	if from == "" || to == "" || from > to {
		return domain.Report{}, store.ErrValidation
	}

	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	purchases, err := s.repo.ListPurchases(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.Report{}, err
	}

	report := domain.Report{
		From:            from,
		To:              to,
		Products:        []domain.ProductReport{},
		Services:        []domain.ServiceReport{},
		UtilityExpenses: []domain.Purchase{},
	}

	costs := averageCosts(purchases)
	byProduct := make(map[string]*lineTotals)

	for _, sale := range sales {
		if !inRange(sale.Date, from, to) {
			continue
		}
		report.TotalRevenue += sale.Amount
		report.TotalPaid += sale.PaidAmount

		// Collection is prorated across line items by the sale's
		// paid ratio; individual lines are not settled separately.
		ratio := 1.0
		if sale.Amount > domain.DueEpsilon {
			ratio = sale.PaidAmount / sale.Amount
		}
		for _, line := range sale.Lines {
			totals := byProduct[line.ProductID]
			if totals == nil {
				totals = &lineTotals{}
				byProduct[line.ProductID] = totals
			}
			revenue := float64(line.Quantity) * line.Price
			totals.quantity += line.Quantity
			totals.revenue += revenue
			totals.paid += revenue * ratio
		}
	}
	report.TotalDue = report.TotalRevenue - report.TotalPaid

	utilityInRange := 0.0
	for _, p := range purchases {
		if !inRange(p.Date, from, to) {
			continue
		}
		report.TotalExpenses += p.Amount
		if p.Type == domain.PurchaseTypeUtility {
			report.UtilityExpenses = append(report.UtilityExpenses, p)
			utilityInRange += p.Amount
		}
	}

	totalCOGS := 0.0
	for _, product := range products {
		totals, sold := byProduct[product.ID]
		if product.Tracked() {
			report.StockValue += costs[product.ID] * float64(*product.Stock)
		}
		if !sold {
			continue
		}
		if product.Tracked() {
			cogs := costs[product.ID] * float64(totals.quantity)
			totalCOGS += cogs
			report.Products = append(report.Products, domain.ProductReport{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  totals.quantity,
				Revenue:   totals.revenue,
				Paid:      totals.paid,
				Due:       totals.revenue - totals.paid,
				COGS:      cogs,
				Profit:    totals.revenue - cogs,
			})
		} else {
			report.Services = append(report.Services, domain.ServiceReport{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  totals.quantity,
				Revenue:   totals.revenue,
				Paid:      totals.paid,
				Due:       totals.revenue - totals.paid,
			})
		}
	}

	report.TotalProfit = report.TotalRevenue - totalCOGS - utilityInRange

	sort.Slice(report.Products, func(i, j int) bool {
		return report.Products[i].Revenue > report.Products[j].Revenue
	})
	sort.Slice(report.Services, func(i, j int) bool {
		return report.Services[i].Revenue > report.Services[j].Revenue
	})

	return report, nil
}
