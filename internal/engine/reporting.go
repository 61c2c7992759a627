package engine

import (
	"fmt"
	"io"
	"math"
	"sync"
	"tickbacktester/types"
	"time"
)

type Report struct {
	// Meta / period info
	StartDate   time.Time
	EndDate     time.Time
	Points      int
	StartEquity float64
	EndEquity   float64

	// Performance
	TotalReturn     float64
	PeriodicReturns []float64
	SharpePerPeriod float64
	MaxDrawdown     float64

	// Order outcomes
	Orders  int
	Fills   int
	Rejects int
	Failed  int
	Errors  int
}

// GenerateReport summarizes the engine's equity curve and order history.
func GenerateReport(e *Engine) *Report {
	return generateReport(e.EquityCurve(), e.OrderHistory(), len(e.errs))
}

func generateReport(curve []types.EquityPoint, orders []types.Order, errCount int) *Report {
	report := &Report{
		Points:          len(curve),
		Orders:          len(orders),
		Errors:          errCount,
		SharpePerPeriod: math.NaN(),
	}
	if len(curve) > 0 {
		report.StartDate = curve[0].Timestamp
		report.EndDate = curve[len(curve)-1].Timestamp
		report.StartEquity = curve[0].Equity
		report.EndEquity = curve[len(curve)-1].Equity
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		report.Fills, report.Rejects, report.Failed = calcOrderOutcomes(orders, &wg)
	}()
	go func() {
		report.MaxDrawdown = calcMaxDrawdown(curve, &wg)
	}()

	if len(curve) >= 2 {
		report.PeriodicReturns = periodicReturns(curve)
		wg.Add(2)
		go func() {
			report.TotalReturn = calcTotalReturn(curve, &wg)
		}()
		go func() {
			report.SharpePerPeriod = calcSharpePerPeriod(report.PeriodicReturns, &wg)
		}()
	}
	wg.Wait()

	return report
}

func PrintReport(w io.Writer, report *Report) {
	fmt.Fprintln(w, "===== Backtest Report =====")
	fmt.Fprintf(w, "Start Date:            %s\n", report.StartDate.Format(time.RFC3339))
	fmt.Fprintf(w, "End Date:              %s\n", report.EndDate.Format(time.RFC3339))
	fmt.Fprintf(w, "Equity Points:         %d\n", report.Points)

	fmt.Fprintln(w, "\n-- Performance --")
	fmt.Fprintf(w, "Start Equity:          %.2f\n", report.StartEquity)
	fmt.Fprintf(w, "End Equity:            %.2f\n", report.EndEquity)
	fmt.Fprintf(w, "Total Return:          %.4f\n", report.TotalReturn)
	fmt.Fprintf(w, "Sharpe (per-period):   %s\n", formatSharpe(report.SharpePerPeriod))
	fmt.Fprintf(w, "Max Drawdown:          %.4f\n", report.MaxDrawdown)

	fmt.Fprintln(w, "\n-- Orders --")
	fmt.Fprintf(w, "Orders:                %d\n", report.Orders)
	fmt.Fprintf(w, "Filled:                %d\n", report.Fills)
	fmt.Fprintf(w, "Rejected:              %d\n", report.Rejects)
	fmt.Fprintf(w, "Failed:                %d\n", report.Failed)
	fmt.Fprintf(w, "Logged Errors:         %d\n", report.Errors)

	fmt.Fprintln(w, "===========================")
}

// periodicReturns yields one return per consecutive pair of points. A
// non-positive previous equity contributes a zero return.
func periodicReturns(curve []types.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	rets := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev, curr := curve[i-1].Equity, curve[i].Equity
		if prev > 0 {
			rets = append(rets, curr/prev-1)
		} else {
			rets = append(rets, 0)
		}
	}
	return rets
}

func calcTotalReturn(curve []types.EquityPoint, wg *sync.WaitGroup) float64 {
	defer wg.Done()
	if len(curve) < 2 || curve[0].Equity <= 0 {
		return 0
	}
	return curve[len(curve)-1].Equity/curve[0].Equity - 1
}

// calcSharpePerPeriod is mean/population stdev of the returns, unannualized.
// It is NaN with fewer than two returns or zero dispersion.
func calcSharpePerPeriod(rets []float64, wg *sync.WaitGroup) float64 {
	defer wg.Done()
	if len(rets) < 2 {
		return math.NaN()
	}

	var sum float64
	for _, r := range rets {
		sum += r
	}
	mean := sum / float64(len(rets))

	var varianceSum float64
	for _, r := range rets {
		diff := r - mean
		varianceSum += diff * diff
	}
	std := math.Sqrt(varianceSum / float64(len(rets)))
	if std == 0 {
		return math.NaN()
	}
	return mean / std
}

// calcMaxDrawdown returns the worst peak-to-trough decline as a positive
// fraction of the peak.
func calcMaxDrawdown(curve []types.EquityPoint, wg *sync.WaitGroup) float64 {
	defer wg.Done()
	if len(curve) < 2 {
		return 0
	}

	peak := curve[0].Equity
	maxDD := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak <= 0 {
			continue
		}
		if dd := (p.Equity - peak) / peak; dd < maxDD {
			maxDD = dd
		}
	}
	return math.Abs(maxDD)
}

func calcOrderOutcomes(orders []types.Order, wg *sync.WaitGroup) (fills, rejects, failed int) {
	defer wg.Done()
	for _, o := range orders {
		switch o.Status {
		case types.OrderFilled:
			fills++
		case types.OrderRejected:
			rejects++
		case types.OrderError:
			failed++
		}
	}
	return fills, rejects, failed
}

func formatSharpe(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4f", v)
}
