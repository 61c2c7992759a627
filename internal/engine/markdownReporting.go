package engine

import (
	"fmt"
	"io"
	"text/template"
)

var markdownTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"f4":     func(v float64) string { return fmt.Sprintf("%.4f", v) },
	"pct":    func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
	"sharpe": formatSharpe,
}).Parse(`# Backtest Performance Report

## Summary Metrics

| Metric | Value |
|---|---:|
| Total Return | {{f4 .Report.TotalReturn}} |
| Sharpe (per-period) | {{sharpe .Report.SharpePerPeriod}} |
| Max Drawdown | {{f4 .Report.MaxDrawdown}} |
| Start Equity | {{printf "%.2f" .Report.StartEquity}} |
| End Equity | {{printf "%.2f" .Report.EndEquity}} |

## Equity Curve
{{if .EquityFile}}
Equity data: [{{.EquityFile}}]({{.EquityFile}})
{{end}}
## Interpretation

Over the backtest window, total return was {{pct .Report.TotalReturn}}, with a per-period Sharpe of {{sharpe .Report.SharpePerPeriod}} and a maximum drawdown of {{pct .Report.MaxDrawdown}}. The engine recorded {{.Report.Fills}} filled orders, {{.Report.Rejects}} rejects, {{.Report.Failed}} failed executions, and {{.Report.Errors}} logged errors.
`))

// WriteMarkdownReport renders the report as Markdown. equityFile, when set,
// is linked as the equity curve data.
func WriteMarkdownReport(w io.Writer, report *Report, equityFile string) error {
	data := struct {
		Report     *Report
		EquityFile string
	}{report, equityFile}
	if err := markdownTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render markdown report: %w", err)
	}
	return nil
}
