// Package shared groups helpers used across packages that belong to no single
// layer.
//
// The testutil subpackage provides:
//
//	- a captured slog handler with assertions on messages and attributes
//	- the schedule window and identifier fixtures used by parser, processor,
//	  service and end-to-end tests
//	- a writer that saves those fixtures as a real workbook
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    testutil.WriteScheduleWorkbook(t, path, "Gantt chart", "ID")
//	    ...
//	    testutil.AssertNoErrors(t, logs)
//	}
package shared
