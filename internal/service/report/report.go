package report

import (
	"sort"
	"strings"
	"time"

	"bakereserve-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// RankLimit caps each product ranking.
const RankLimit = 10

// DefaultCakeKey groups cake items that carry no subCategory.
const DefaultCakeKey = "Custom Cake"

type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

type SortOrder string

const (
	SortHighest SortOrder = "highest"
	SortLowest  SortOrder = "lowest"
)

type Query struct {
	Period Period
	Sort   SortOrder
}

// ParseQuery normalizes raw query values; empty values default to month and highest.
func ParseQuery(period, order string) (Query, error) {
	q := Query{
		Period: Period(strings.ToLower(strings.TrimSpace(period))),
		Sort:   SortOrder(strings.ToLower(strings.TrimSpace(order))),
	}
	if q.Period == "" {
		q.Period = PeriodMonth
	}
	if q.Sort == "" {
		q.Sort = SortHighest
	}
	switch q.Period {
	case PeriodDay, PeriodMonth, PeriodYear, PeriodAll:
	default:
		return q, domain.Invalid("period", "must be day, month, year or all")
	}
	if q.Sort != SortHighest && q.Sort != SortLowest {
		return q, domain.Invalid("sort", "must be highest or lowest")
	}
	return q, nil
}

type RankEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Stats struct {
	Period    Period          `json:"period"`
	Sort      SortOrder       `json:"sort"`
	Total     int             `json:"total"`
	Completed int             `json:"completed"`
	Rejected  int             `json:"rejected"`
	Revenue   decimal.Decimal `json:"revenue"`
	BreadRank []RankEntry     `json:"breadRank"`
	CakeRank  []RankEntry     `json:"cakeRank"`
}

// InPeriod reports whether t falls in the same day, month or year as now,
// measured in now's location.
func InPeriod(t time.Time, p Period, now time.Time) bool {
	t = t.In(now.Location())
	switch p {
	case PeriodDay:
		return t.Year() == now.Year() && t.YearDay() == now.YearDay()
	case PeriodMonth:
		return t.Year() == now.Year() && t.Month() == now.Month()
	case PeriodYear:
		return t.Year() == now.Year()
	default:
		return true
	}
}

// Compute aggregates the orders created within the query period.
func Compute(orders []domain.Order, q Query, now time.Time) Stats {
	st := Stats{
		Period:    q.Period,
		Sort:      q.Sort,
		Revenue:   decimal.Zero,
		BreadRank: []RankEntry{},
		CakeRank:  []RankEntry{},
	}
	bread := map[string]int{}
	cake := map[string]int{}

	for _, o := range orders {
		if !InPeriod(o.CreatedAt, q.Period, now) {
			continue
		}
		st.Total++
		switch o.Status {
		case domain.OrderStatusRejected, domain.OrderStatusCancelled:
			st.Rejected++
			continue
		case domain.OrderStatusCompleted:
		default:
			continue
		}
		st.Completed++
		st.Revenue = st.Revenue.Add(o.TotalPrice)
		for _, item := range o.Items {
			if item.ProductID == "" {
				continue
			}
			if item.IsCake() {
				key := strings.TrimSpace(item.SubCategory)
				if key == "" {
					key = DefaultCakeKey
				}
				cake[key] += item.Quantity
				continue
			}
			bread[item.Name] += item.Quantity
		}
	}

	st.BreadRank = Rank(bread, q.Sort, RankLimit)
	st.CakeRank = Rank(cake, q.Sort, RankLimit)
	return st
}

// Rank orders counts by count and keeps the first limit entries. Equal counts
// are ordered by name so the result is stable.
func Rank(counts map[string]int, order SortOrder, limit int) []RankEntry {
	out := make([]RankEntry, 0, len(counts))
	for name, count := range counts {
		out = append(out, RankEntry{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			if order == SortLowest {
				return out[i].Count < out[j].Count
			}
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
