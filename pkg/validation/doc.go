// Package validation defines the contract between a form and the schema
// library that checks its values. A Validator either accepts a value bag or
// fails with Violations (a structured list of path/message pairs) or with any
// other error, which forms treat as a general, form-level failure.
//
// Validators are called from background goroutines and receive a private copy
// of the values, so implementations may read them without synchronisation.
package validation
