// Package exporter writes tables to disk.
//
// WriteCSV produces UTF-8 CSV with a byte order mark by default so the
// Chinese column names open correctly in Excel. WriteXLSX stores the same
// table in a workbook with numeric cells. Write picks one from the format
// name or the file extension:
//
//	err := exporter.Write(result, "reports/product_line_summary.xlsx", "", exporter.DefaultWriteOptions())
package exporter
