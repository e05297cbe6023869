// Package workbook reads schedule windows from spreadsheets and commits
// rendered report tables to output targets.
//
// A Source reads a rectangular A1 range of one sheet into domain cells. A Sink
// replaces whole tables: every implementation builds the complete output
// before touching the target, so a failed run never leaves half-written
// sheets behind.
//
// Sources:
//   - ExcelSource reads .xlsx workbooks with excelize.
//   - GoogleSheets reads spreadsheets through the Sheets API.
//
// Sinks:
//   - ExcelSink writes to a temporary workbook and renames it over the target.
//   - GoogleSheets clears and rewrites the output sheets in two batch calls.
//   - SQLiteSink stores every cell in one transaction.
//   - MultiSink commits to several sinks in order.
package workbook
