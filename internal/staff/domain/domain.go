// Package domain holds the staffdir value types: employees, directory queries,
// password rules and their results, and denylist entries. It has no
// dependencies beyond the standard library.
package domain
