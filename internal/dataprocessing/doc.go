// Package dataprocessing turns academic-results exports into a grade tree.
//
// An export arrives as a Table: a header and positional records read from
// CSV or XLSX by Reader. The Pipeline then
//
//  1. detects the layout from the first record (DetectLayout),
//  2. reshapes horizontal exports into canonical long rows
//     (HorizontalNormalizer),
//  3. folds the rows into Student -> SemesterResult -> Mark
//     (RecordAggregator), grading each mark as it is appended.
//
// Only an empty export or a horizontal export without its five metadata
// rows is an error. Rows missing a Roll No or Sub Name are counted and
// dropped; numbers that do not parse become NaN and flow through the
// arithmetic.
package dataprocessing
