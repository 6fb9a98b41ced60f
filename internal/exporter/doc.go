// Package exporter renders grade sheets.
//
// Three Writers share one interface: JSONWriter encodes the student tree,
// CSVWriter flattens it to one line per mark, XLSXWriter lays out one
// worksheet per student semester. StreamRenderer and FileRenderer adapt a
// Writer to the pipeline's renderer boundary.
package exporter
