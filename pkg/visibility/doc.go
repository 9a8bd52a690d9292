// Package visibility compiles the small boolean rules definitions use to show
// or hide a field depending on the current form values, e.g.
//
//	newsletter == true && plan != "free"
//	age >= 18 || address.country == "FR"
//
// Identifiers are dotted value paths. Comparisons take a literal on the right:
// a quoted string, a number, true, false or null. A bare identifier tests
// truthiness.
package visibility
