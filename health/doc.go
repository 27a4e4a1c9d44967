// Package health runs named dependency probes under a bounded per-probe
// timeout and reports one Result per probe. The root façade registers a
// probe per external dependency (metadata store, each search backend) and
// folds the results into its health report.
package health
