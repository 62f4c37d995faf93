// Package normalisers holds the parsers that turn raw file content into
// domain documents. Each normaliser implements driven.DocumentParser for one
// document format.
package normalisers
