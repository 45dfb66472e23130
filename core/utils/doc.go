// Package utils provides common conversion helpers for values read back from
// database drivers, whose concrete types differ between MySQL and SQLite.
package utils
