// Package util holds small formatting helpers shared by the planner's
// error messages and plan output.
package util

import "strings"

// JoinOrNone joins names with ", " or returns "(none)" when there are none.
// Used for "Available ..." hints where an empty list should still read.
func JoinOrNone(items []string) string {
	return JoinOrDefault(items, "(none)")
}

// JoinOrDefault joins strings with ", " or returns def for an empty slice.
func JoinOrDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
