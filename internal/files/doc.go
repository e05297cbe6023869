// Package files watches the source workbook and re-runs the report when it
// changes on disk.
//
// Editors save workbooks in bursts (temp file, rename, lock file), so events
// are debounced and a run only starts once the file has been quiet for the
// configured interval. Changes written by the run itself, for example when the
// report is committed back into the source workbook, do not trigger another
// run.
//
// Example usage:
//
//	w, err := files.NewWatcher(cfg.Source.WorkbookPath, cfg.Watch.Debounce, run, logger)
//	if err != nil {
//	    return err
//	}
//	return w.Run(ctx)
package files
