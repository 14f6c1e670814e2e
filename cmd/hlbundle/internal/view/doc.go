// Package view provides output formatting and logging for the hlbundle CLI.
//
// Results go to a Stream in the selected output format. Logs go to their own
// writer, human readable with colored levels or JSON, so structured results
// on stdout stay machine readable.
package view
