// Package model defines the core data structures used throughout memefetch.
//
// # Catalog
//
// A Catalog is an ordered, immutable set of entries. Each Entry pairs a
// plain file name with the URL it is downloaded from:
//
//	memes, err := model.NewCatalog([]model.Entry{
//	    {Name: "drake_no.jpg", URL: "https://i.imgflip.com/30b1gx.jpg"},
//	})
//
// # Outcome
//
// Every entry ends a run with exactly one Outcome: Skipped, Succeeded or
// Failed. Skipped and Succeeded both mean the file is present afterwards.
//
// # Report
//
// A Report holds one ItemResult per entry, in catalog order. RunSummary is
// the aggregate view of a report (see report.Summarize).
package model
