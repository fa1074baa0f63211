package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/clepigdo/Simig-Webapps/internal/model"
	"github.com/clepigdo/Simig-Webapps/internal/repository"

	"github.com/shopspring/decimal"
)

// Report periods. Anything unrecognized falls back to monthly.
const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// NormalizePeriod maps a raw query value onto a supported period.
func NormalizePeriod(period string) string {
	switch period {
	case PeriodWeekly, PeriodYearly:
		return period
	default:
		return PeriodMonthly
	}
}

// ChartData pairs a label axis with an equally long value series.
// Empty buckets carry numeric zero so both arrays stay aligned.
type ChartData struct {
	Labels []string          `json:"labels"`
	Data   []decimal.Decimal `json:"data"`
}

type ReportSummary struct {
	TotalIn     decimal.Decimal `json:"total_in"`
	TotalOut    decimal.Decimal `json:"total_out"`
	Revenue     decimal.Decimal `json:"revenue"`
	AssetChange decimal.Decimal `json:"asset_change"`
	DateInfo    string          `json:"date_info"`
}

type ReportResponse struct {
	PieChart   ChartData     `json:"pie_chart"`
	BarChart   ChartData     `json:"bar_chart"`
	PieChartIn ChartData     `json:"pie_chart_in"`
	BarChartIn ChartData     `json:"bar_chart_in"`
	Summary    ReportSummary `json:"summary"`
}

type ReportService interface {
	GetReport(period string) (*ReportResponse, error)
}

type reportService struct {
	txRepo repository.TransactionRepository
}

func NewReportService(tRepo repository.TransactionRepository) ReportService {
	return &reportService{txRepo: tRepo}
}

// txEntry flattens one transaction of either kind for bucketing.
type txEntry struct {
	Date        time.Time
	Quantity    decimal.Decimal
	ProductName string
	Price       decimal.Decimal
}

func entriesFromIn(list []model.TransactionIn) []txEntry {
	entries := make([]txEntry, 0, len(list))
	for _, t := range list {
		e := txEntry{Date: t.Date, Quantity: t.Quantity}
		if t.Product != nil {
			e.ProductName = t.Product.Name
			e.Price = t.Product.PricePerKg
		}
		entries = append(entries, e)
	}
	return entries
}

func entriesFromOut(list []model.TransactionOut) []txEntry {
	entries := make([]txEntry, 0, len(list))
	for _, t := range list {
		e := txEntry{Date: t.Date, Quantity: t.Quantity}
		if t.Product != nil {
			e.ProductName = t.Product.Name
			e.Price = t.Product.PricePerKg
		}
		entries = append(entries, e)
	}
	return entries
}

// today returns the current calendar date at UTC midnight, matching how
// transaction dates are stored.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func startOfYear(day time.Time) time.Time {
	return time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// weekdayLabels returns seven weekday names in chronological order starting
// from start's weekday.
func weekdayLabels(start time.Time) []string {
	labels := make([]string, 7)
	for i := 0; i < 7; i++ {
		labels[i] = start.AddDate(0, 0, i).Weekday().String()
	}
	return labels
}

var weekOfMonthLabels = []string{"Week 1", "Week 2", "Week 3", "Week 4"}

var monthLabels = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func zeroSeries(n int) []decimal.Decimal {
	series := make([]decimal.Decimal, n)
	for i := range series {
		series[i] = decimal.Zero
	}
	return series
}

// bucketByWeekday sums quantities into the seven weekday buckets keyed off
// the label order produced by weekdayLabels(start).
func bucketByWeekday(entries []txEntry, labels []string) []decimal.Decimal {
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}
	values := zeroSeries(len(labels))
	for _, e := range entries {
		if i, ok := index[e.Date.Weekday().String()]; ok {
			values[i] = values[i].Add(e.Quantity)
		}
	}
	return values
}

// bucketByWeekOfMonth partitions a month's entries into the four fixed bins
// by day-of-month cutoffs: 1-7, 8-14, 15-21, 22-end.
func bucketByWeekOfMonth(entries []txEntry) []decimal.Decimal {
	values := zeroSeries(4)
	for _, e := range entries {
		day := e.Date.Day()
		switch {
		case day <= 7:
			values[0] = values[0].Add(e.Quantity)
		case day <= 14:
			values[1] = values[1].Add(e.Quantity)
		case day <= 21:
			values[2] = values[2].Add(e.Quantity)
		default:
			values[3] = values[3].Add(e.Quantity)
		}
	}
	return values
}

// bucketByMonth sums quantities into twelve calendar-month buckets for the
// given year.
func bucketByMonth(entries []txEntry, year int) []decimal.Decimal {
	values := zeroSeries(12)
	for _, e := range entries {
		if e.Date.Year() == year {
			m := int(e.Date.Month()) - 1
			values[m] = values[m].Add(e.Quantity)
		}
	}
	return values
}

// pieFromEntries groups quantities by product name, sorted descending by
// total. Only products with activity appear.
func pieFromEntries(entries []txEntry) ChartData {
	totals := make(map[string]decimal.Decimal)
	order := []string{}
	for _, e := range entries {
		if _, seen := totals[e.ProductName]; !seen {
			order = append(order, e.ProductName)
		}
		totals[e.ProductName] = totals[e.ProductName].Add(e.Quantity)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]].GreaterThan(totals[order[j]])
	})

	chart := ChartData{Labels: []string{}, Data: []decimal.Decimal{}}
	for _, name := range order {
		chart.Labels = append(chart.Labels, name)
		chart.Data = append(chart.Data, totals[name])
	}
	return chart
}

// entriesValue prices entries at the product's current price per kg.
func entriesValue(entries []txEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Quantity.Mul(e.Price))
	}
	return total
}

func (s *reportService) GetReport(period string) (*ReportResponse, error) {
	period = NormalizePeriod(period)
	now := today()

	var startDate time.Time
	var barLabels []string
	var barIn, barOut []decimal.Decimal
	var dateInfo string

	// Window entries drive the pie charts and summary (date >= start_date).
	var windowIn, windowOut []txEntry

	switch period {
	case PeriodWeekly:
		startDate = now.AddDate(0, 0, -6)
		dateInfo = fmt.Sprintf("%s - %s", startDate.Format("02 January"), now.Format("02 January 2006"))

		ins, err := s.txRepo.FindInSince(startDate)
		if err != nil {
			return nil, err
		}
		outs, err := s.txRepo.FindOutSince(startDate)
		if err != nil {
			return nil, err
		}
		windowIn, windowOut = entriesFromIn(ins), entriesFromOut(outs)

		barLabels = weekdayLabels(startDate)
		barIn = bucketByWeekday(windowIn, barLabels)
		barOut = bucketByWeekday(windowOut, barLabels)

	case PeriodYearly:
		startDate = startOfYear(now)
		dateInfo = fmt.Sprintf("Year %d", now.Year())

		ins, err := s.txRepo.FindInSince(startDate)
		if err != nil {
			return nil, err
		}
		outs, err := s.txRepo.FindOutSince(startDate)
		if err != nil {
			return nil, err
		}
		windowIn, windowOut = entriesFromIn(ins), entriesFromOut(outs)

		barLabels = monthLabels
		barIn = bucketByMonth(windowIn, now.Year())
		barOut = bucketByMonth(windowOut, now.Year())

	default: // monthly
		startDate = startOfMonth(now)
		dateInfo = now.Format("January 2006")

		ins, err := s.txRepo.FindInSince(startDate)
		if err != nil {
			return nil, err
		}
		outs, err := s.txRepo.FindOutSince(startDate)
		if err != nil {
			return nil, err
		}
		windowIn, windowOut = entriesFromIn(ins), entriesFromOut(outs)

		// Bars only cover the current calendar month
		monthEnd := startDate.AddDate(0, 1, 0)
		monthIns, err := s.txRepo.FindInBetween(startDate, monthEnd)
		if err != nil {
			return nil, err
		}
		monthOuts, err := s.txRepo.FindOutBetween(startDate, monthEnd)
		if err != nil {
			return nil, err
		}

		barLabels = weekOfMonthLabels
		barIn = bucketByWeekOfMonth(entriesFromIn(monthIns))
		barOut = bucketByWeekOfMonth(entriesFromOut(monthOuts))
	}

	totalIn, err := s.txRepo.SumInSince(startDate)
	if err != nil {
		return nil, err
	}
	totalOut, err := s.txRepo.SumOutSince(startDate)
	if err != nil {
		return nil, err
	}

	revenue := entriesValue(windowOut)
	assetIn := entriesValue(windowIn)

	return &ReportResponse{
		PieChart:   pieFromEntries(windowOut),
		BarChart:   ChartData{Labels: barLabels, Data: barOut},
		PieChartIn: pieFromEntries(windowIn),
		BarChartIn: ChartData{Labels: barLabels, Data: barIn},
		Summary: ReportSummary{
			TotalIn:     totalIn,
			TotalOut:    totalOut,
			Revenue:     revenue,
			AssetChange: assetIn.Sub(revenue),
			DateInfo:    dateInfo,
		},
	}, nil
}
