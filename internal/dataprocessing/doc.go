// Package dataprocessing derives the schedule reports from a Gantt chart grid.
// It holds the whole transformation: parsing raw spreadsheet windows, indexing
// entities, compressing date runs, tracking join/leave transitions, filtering
// the tracked categories for today and counting category occurrences.
//
// # Architecture
//
//  1. Parser: turns raw cell windows into a domain.Grid and an identifier table
//  2. IndexEntities: unique entities with their categories, dates and cell hits
//  3. CompressRuns: consecutive calendar days folded into DD/MM/YY ranges
//  4. TrackTransitions: who starts and who ends on each distinct date
//  5. FilterCategories: today's occupants of the tracked categories
//  6. CountOccurrences: entity × category cell-hit counts with a total
//
// Processor runs the stages in order and returns a domain.Report.
//
// # Usage
//
//	parser := dataprocessing.NewParser(logger)
//	grid, err := parser.ParseGantt(window, dataprocessing.Origin{Sheet: "Gantt chart", Col: 1, Row: 3})
//	if err != nil {
//	    return err
//	}
//	ids := parser.ParseIdentifiers(idRows)
//
//	proc := dataprocessing.NewProcessor(logger, dataprocessing.DefaultOptions())
//	report, err := proc.Process(ctx, grid, ids, dataprocessing.CalendarDay(time.Now(), loc))
//
// # Dates
//
// Calendar days are midnight UTC values, so the day after d is always
// d.AddDate(0, 0, 1). Convert wall-clock times with CalendarDay first.
//
// # Concurrency
//
// Every function is synchronous and starts no goroutines. A grid is treated as
// an immutable snapshot for the duration of a call.
package dataprocessing
