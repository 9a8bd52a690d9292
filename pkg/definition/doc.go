// Package definition loads form definitions from JSON or YAML files. A
// definition bundles initial values, the validation schema (inline or taken
// from an OpenAPI operation), field presentation hints and submit settings.
package definition
