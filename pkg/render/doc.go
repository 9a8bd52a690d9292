// Package render turns form snapshots into markup. Views are built from a
// snapshot plus the definition's field hints, themed through go-theme tokens,
// sanitised with bluemonday and rendered by pongo2 templates. Renderers can
// also be embedded in templ pages as components.
package render
