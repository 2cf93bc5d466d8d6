// Package chart renders aggregation results as PNG dashboards with gonum
// plot. A Dashboard lays its panels out two per row; every panel plots one
// or more numeric columns against the dashboard's label column.
//
//	err := chart.Render(summary, chart.SalesDashboard(), "dashboard.png", chart.Options{
//	    Width: 1500, Height: 1000, MarginLabel: "All", FontPath: "NotoSansSC.ttf",
//	})
//
// Chinese labels need FontPath, since the bundled fonts are Latin only.
package chart
