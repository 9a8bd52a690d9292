package render

// RenderOptions carries per-request data used while building a View.
type RenderOptions struct {
	// Action and Method end up on the form element. Method defaults to POST.
	Action string
	Method string
	// Theme resolves CSS classes; nil uses the built-in defaults.
	Theme *Theme
	// Hidden fields are emitted before the visible controls.
	Hidden []HiddenField
	// IncludeVersion adds the form version as a hidden field so a backend can
	// reject stale submissions.
	IncludeVersion bool
}
