// Package download provides the orchestration logic that materializes a
// catalog into a local directory.
//
// # Manager
//
// The Manager drives a run, one catalog entry at a time:
//
//  1. Resolve the destination path for the entry
//  2. Skip the entry if something already exists there (no request is made)
//  3. Fetch the asset with a single bounded GET
//  4. Optionally normalize image content to match the file extension
//  5. Write the payload atomically
//  6. Record exactly one Outcome for the entry
//
// A failing entry never stops the run. Only an unusable destination
// directory is fatal; Run then returns an *ioutils.SetupError before any
// entry is touched.
//
// # Basic Usage
//
//	manager := download.NewManager(settings, catalog.Default(), func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	result, err := manager.Run(ctx)
//	if err != nil {
//	    log.Fatal(err) // destination directory could not be created
//	}
//	summary := report.Summarize(result.Results)
//
// # Concurrency
//
// Settings.MaxConcurrentDownloads bounds how many entries are in flight.
// With the default of 1 the run is strictly sequential. With more workers,
// each entry is still processed independently and results stay in catalog
// order.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Entry   string
//	}
//
// Events are delivered one at a time even when several workers are running.
// GetProgress exposes the same information as counters for polling UIs.
package download
