package server

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// handleDashboard serves the budget dashboard HTML page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	status := s.gw.BudgetStatus()
	usage := s.gw.Usage()

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="5">
<title>Orchestrator - Budget Dashboard</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: 'SF Mono', 'Fira Code', 'Cascadia Code', monospace; background: #0d1117; color: #c9d1d9; padding: 24px; }
  h1 { color: #58a6ff; font-size: 18px; margin-bottom: 16px; }
  h2 { color: #8b949e; font-size: 13px; text-transform: uppercase; letter-spacing: 1px; margin: 24px 0 8px; }
  .summary { display: flex; gap: 24px; margin-bottom: 24px; padding: 16px; background: #161b22; border: 1px solid #30363d; border-radius: 6px; }
  .stat-label { font-size: 11px; color: #8b949e; text-transform: uppercase; letter-spacing: 1px; }
  .stat-value { font-size: 24px; font-weight: bold; color: #f0f6fc; }
  .stat-value.cost { color: #ffa657; }
  .level-healthy { color: #3fb950; }
  .level-moderate { color: #d29922; }
  .level-warning { color: #ffa657; }
  .level-critical { color: #f85149; }
  table { width: 100%; border-collapse: collapse; background: #161b22; border: 1px solid #30363d; border-radius: 6px; overflow: hidden; }
  th { text-align: left; padding: 10px 14px; font-size: 11px; color: #8b949e; text-transform: uppercase; letter-spacing: 1px; background: #0d1117; border-bottom: 1px solid #30363d; }
  td { padding: 10px 14px; font-size: 13px; border-bottom: 1px solid #21262d; }
  tr:last-child td { border-bottom: none; }
  .model { color: #d2a8ff; }
  .cost { color: #ffa657; font-weight: bold; }
  .empty { text-align: center; padding: 40px; color: #8b949e; }
  .rec { padding: 8px 14px; background: #161b22; border: 1px solid #30363d; border-radius: 6px; margin-bottom: 4px; font-size: 13px; }
  .footer { margin-top: 16px; font-size: 11px; color: #484f58; }
</style>
</head>
<body>
<h1>Orchestrator - Budget Dashboard</h1>
<div class="summary">
  <div class="stat">
    <div class="stat-label">Spend</div>
    <div class="stat-value cost">`)
	fmt.Fprintf(&b, "$%.4f", status.UsedBudget)
	b.WriteString(`</div>
  </div>
  <div class="stat">
    <div class="stat-label">Remaining</div>
    <div class="stat-value">`)
	fmt.Fprintf(&b, "$%.4f", status.RemainingBudget)
	b.WriteString(`</div>
  </div>
  <div class="stat">
    <div class="stat-label">Level</div>
    <div class="stat-value level-`)
	b.WriteString(string(status.Level))
	b.WriteString(`">`)
	b.WriteString(strings.ToUpper(string(status.Level)))
	b.WriteString(`</div>
  </div>
  <div class="stat">
    <div class="stat-label">Remote Calls</div>
    <div class="stat-value">`)
	fmt.Fprintf(&b, "%d", usage.CallsMade)
	b.WriteString(`</div>
  </div>
  <div class="stat">
    <div class="stat-label">Est. Calls Left</div>
    <div class="stat-value">`)
	fmt.Fprintf(&b, "%.0f", status.EstimatedRemainingCalls)
	b.WriteString(`</div>
  </div>
</div>
`)

	if len(status.Recommendations) > 0 {
		b.WriteString("<h2>Recommendations</h2>\n")
		for _, rec := range status.Recommendations {
			fmt.Fprintf(&b, `<div class="rec">%s</div>`+"\n", rec)
		}
	}

	b.WriteString("<h2>Per-Model Spend</h2>\n")
	if len(usage.PerModelBreakdown) == 0 {
		b.WriteString(`<div class="empty">No remote calls yet.</div>`)
	} else {
		models := make([]string, 0, len(usage.PerModelBreakdown))
		for m := range usage.PerModelBreakdown {
			models = append(models, m)
		}
		sort.Strings(models)

		b.WriteString(`<table>
<tr><th>Model</th><th>Calls</th><th>Tokens</th><th>Cost</th></tr>
`)
		for _, m := range models {
			mu := usage.PerModelBreakdown[m]
			fmt.Fprintf(&b,
				`<tr><td class="model">%s</td><td>%d</td><td>%d</td><td class="cost">$%.4f</td></tr>`+"\n",
				m, mu.Calls, mu.Tokens, mu.Cost)
		}
		b.WriteString("</table>\n")
	}

	b.WriteString("<h2>Recent Calls</h2>\n")
	if len(usage.RecentCallHistory) == 0 {
		b.WriteString(`<div class="empty">No call history yet.</div>`)
	} else {
		b.WriteString(`<table>
<tr><th>Time</th><th>Agent</th><th>Model</th><th>Task</th><th>Tokens</th><th>Cost</th></tr>
`)
		for i := len(usage.RecentCallHistory) - 1; i >= 0; i-- {
			rec := usage.RecentCallHistory[i]
			fmt.Fprintf(&b,
				`<tr><td>%s</td><td>%s</td><td class="model">%s</td><td>%s</td><td>%d</td><td class="cost">$%.4f</td></tr>`+"\n",
				rec.Timestamp.Format("15:04:05"), rec.Agent, rec.Model, rec.TaskType,
				rec.PromptTokens+rec.CompletionTokens, rec.Cost)
		}
		b.WriteString("</table>\n")
	}

	fmt.Fprintf(&b, `<div class="footer">Budget $%.2f | auto-refresh 5s</div>`, status.TotalBudget)
	b.WriteString("\n</body>\n</html>\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}
