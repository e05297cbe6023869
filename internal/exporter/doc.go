// Package exporter renders a derived schedule report into output tables and
// writes them as CSV files.
//
// Renderer produces the four sheets of a run: the per-entity date summary, the
// date transition list, the tracked-category report for today and the
// occurrence counter. CSVSink commits those tables to a directory, one
// BOM-prefixed UTF-8 file per sheet, so spreadsheet applications open Hebrew
// labels correctly.
//
// Example usage:
//
//	renderer := exporter.NewRenderer(exporter.NamesFromConfig(cfg.Output))
//	tables := renderer.Render(report)
//
//	sink := exporter.NewCSVSink(paths, cfg.Output.CSVDir, logger)
//	err := sink.Commit(ctx, tables)
package exporter
