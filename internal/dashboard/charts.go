package dashboard

import (
	"errors"
	"strings"
)

const (
	RangeWeekly  = "weekly"
	RangeMonthly = "monthly"
)

var ErrUnknownRange = errors.New("range must be weekly or monthly")

// Series is one chart's rows; each row maps a data key to its value and
// carries its axis label under "name".
type Series []map[string]any

type Charts struct {
	Range   string `json:"range"`
	Revenue Series `json:"revenue"`
	Bar     Series `json:"bar"`
	Line    Series `json:"line"`
	Pie     Series `json:"pie"`
	Area    Series `json:"area"`
}

func point(name string, kv ...any) map[string]any {
	p := map[string]any{"name": name}
	for i := 0; i+1 < len(kv); i += 2 {
		p[kv[i].(string)] = kv[i+1]
	}
	return p
}

func monthlyRevenue() Series {
	return Series{
		point("Jan", "revenue", 4000, "expenses", 2400),
		point("Feb", "revenue", 3000, "expenses", 1398),
		point("Mar", "revenue", 2000, "expenses", 9800),
		point("Apr", "revenue", 2780, "expenses", 3908),
		point("May", "revenue", 1890, "expenses", 4800),
		point("Jun", "revenue", 2390, "expenses", 3800),
		point("Jul", "revenue", 3490, "expenses", 4300),
		point("Aug", "revenue", 4000, "expenses", 2400),
		point("Sep", "revenue", 3000, "expenses", 1398),
		point("Oct", "revenue", 2000, "expenses", 9800),
		point("Nov", "revenue", 2780, "expenses", 3908),
		point("Dec", "revenue", 5890, "expenses", 4800),
	}
}

func weeklyRevenue() Series {
	return Series{
		point("Mon", "revenue", 1200, "expenses", 800),
		point("Tue", "revenue", 1900, "expenses", 1200),
		point("Wed", "revenue", 1500, "expenses", 900),
		point("Thu", "revenue", 2200, "expenses", 1400),
		point("Fri", "revenue", 2800, "expenses", 1800),
		point("Sat", "revenue", 1600, "expenses", 600),
		point("Sun", "revenue", 900, "expenses", 400),
	}
}

// ChartData returns the chart datasets for the given revenue range. An empty
// range means monthly.
func ChartData(rangeName string) (*Charts, error) {
	rangeName = strings.ToLower(strings.TrimSpace(rangeName))
	var revenue Series
	switch rangeName {
	case "", RangeMonthly:
		rangeName = RangeMonthly
		revenue = monthlyRevenue()
	case RangeWeekly:
		revenue = weeklyRevenue()
	default:
		return nil, ErrUnknownRange
	}

	return &Charts{
		Range:   rangeName,
		Revenue: revenue,
		Bar: Series{
			point("Jan", "sales", 4000, "profit", 2400),
			point("Feb", "sales", 3000, "profit", 1398),
			point("Mar", "sales", 2000, "profit", 9800),
			point("Apr", "sales", 2780, "profit", 3908),
			point("May", "sales", 1890, "profit", 4800),
			point("Jun", "sales", 2390, "profit", 3800),
		},
		Line: Series{
			point("Week 1", "visitors", 4000, "pageViews", 2400, "bounceRate", 24),
			point("Week 2", "visitors", 3000, "pageViews", 1398, "bounceRate", 22),
			point("Week 3", "visitors", 2000, "pageViews", 9800, "bounceRate", 29),
			point("Week 4", "visitors", 2780, "pageViews", 3908, "bounceRate", 20),
		},
		Pie: Series{
			point("Desktop", "value", 400, "color", "#0ea5e9"),
			point("Mobile", "value", 300, "color", "#8b5cf6"),
			point("Tablet", "value", 200, "color", "#f43f5e"),
			point("Other", "value", 100, "color", "#f59e0b"),
		},
		Area: Series{
			point("Mon", "cpu", 40, "memory", 24, "network", 10),
			point("Tue", "cpu", 30, "memory", 13, "network", 22),
			point("Wed", "cpu", 20, "memory", 98, "network", 30),
			point("Thu", "cpu", 27, "memory", 39, "network", 25),
			point("Fri", "cpu", 18, "memory", 48, "network", 18),
			point("Sat", "cpu", 23, "memory", 38, "network", 12),
			point("Sun", "cpu", 34, "memory", 43, "network", 8),
		},
	}, nil
}
