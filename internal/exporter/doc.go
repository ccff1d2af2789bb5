// Package exporter writes filtered records and simulation results as
// delimited text or Excel workbooks, and formats values for display.
//
// A Sheet is the format-neutral table handed to a writer:
//
//	sheet := exporter.RecordsSheet(ds.Table, view.Records)
//	err := exp.Export(ctx, w, exporter.FormatCSV, sheet)
//
// CSV output is semicolon-delimited and starts with a UTF-8 BOM so Excel
// opens it with the right encoding. XLSX output holds a single sheet with
// a bold header row; numeric cells keep their type.
package exporter
