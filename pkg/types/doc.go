// Package types defines the record model, the Store interface, standard
// errors, and configuration for the kindling project tracker.
//
// A record moves through three mutually exclusive stages: an Idea in the
// incubator, an Experiment in the active stage, and an ArchiveEntry once
// completed. Both storage backends return records in the canonical wire
// shapes defined here.
package types
