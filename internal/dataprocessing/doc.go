// Package dataprocessing turns sales exports into tables and profiles them.
//
// # Loading
//
// LoadCSV and LoadXLSX read a file whose first row is the header. Column
// kinds are inferred (all integers, else all numbers, else text) unless
// LoadOptions.Types forces them:
//
//	tbl, err := dataprocessing.Load("s1.csv", dataprocessing.LoadOptions{
//	    Types: map[string]table.Kind{"Branch": table.KindText},
//	})
//
// Input may start with a UTF-8 byte order mark; legacy Chinese exports can be
// read with Encoding "gbk" or "gb18030".
//
// # Profiling
//
// Summarize reports the shape, kinds and null counts of a table, ValueCounts
// tallies a categorical column and Describe computes count, mean, std,
// quartiles and extremes of a numeric column.
//
// # Error Handling
//
// A missing input is a NOT_FOUND error and a malformed record is a PARSING
// error carrying the file path and line number.
package dataprocessing
