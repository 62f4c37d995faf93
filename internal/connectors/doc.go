// Package connectors holds the infrastructure that reaches document sources.
// The filesystem connector scans document directories and watches them for
// changes.
package connectors
