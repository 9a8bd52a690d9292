package render

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/snapshot"
)

// View is the template-facing projection of a form snapshot.
type View struct {
	ID          string        `json:"id,omitempty"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Action      string        `json:"action,omitempty"`
	Method      string        `json:"method"`
	Class       string        `json:"class"`
	Style       string        `json:"style,omitempty"`
	Version     uint64        `json:"version"`
	Validity    string        `json:"validity"`
	Validating  bool          `json:"validating"`
	Submitting  bool          `json:"submitting"`
	Dirty       bool          `json:"dirty"`
	Status      *StatusView   `json:"status,omitempty"`
	Fields      []FieldView   `json:"fields"`
	Hidden      []HiddenField `json:"hidden,omitempty"`
}

// StatusView is the general status banner. HTML is sanitised markup; Text is
// the original message.
type StatusView struct {
	Severity string `json:"severity"`
	HTML     string `json:"html"`
	Text     string `json:"text"`
	Class    string `json:"class"`
}

// FieldView describes one control.
type FieldView struct {
	Name        string   `json:"name"`
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Help        string   `json:"help,omitempty"`
	Kind        string   `json:"kind"`
	InputType   string   `json:"input_type"`
	Placeholder string   `json:"placeholder,omitempty"`
	Value       string   `json:"value"`
	Checked     bool     `json:"checked"`
	Options     []string `json:"options,omitempty"`
	Touched     bool     `json:"touched"`
	State       string   `json:"state"`
	Class       string   `json:"class"`
	ErrorHTML   string   `json:"error_html,omitempty"`
	ErrorText   string   `json:"error_text,omitempty"`
	HintClass   string   `json:"hint_class,omitempty"`
	Disabled    bool     `json:"disabled"`
	Hidden      bool     `json:"hidden"`
}

// BuildView projects snap through def's field hints. Fields listed in
// snap.Fields are used as is; otherwise they are derived from the state in
// definition order. Fields whose visibility rule fails are kept but marked
// hidden.
func BuildView(snap snapshot.Snapshot, def definition.Definition, opts RenderOptions) View {
	th := opts.Theme
	if th == nil {
		th = DefaultTheme()
	}
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = "POST"
	}

	state := snap.State
	view := View{
		ID:          def.ID,
		Title:       def.Title,
		Description: def.Description,
		Action:      opts.Action,
		Method:      method,
		Class:       th.Class(TokenForm),
		Style:       th.Style(),
		Version:     state.Version,
		Validity:    state.Validity.String(),
		Validating:  state.Validating,
		Submitting:  state.Submitting,
		Dirty:       state.Dirty,
	}

	if status := state.Status; status != nil && strings.TrimSpace(status.Message) != "" {
		severity := string(status.Severity)
		if severity == "" {
			severity = string(form.SeverityInfo)
		}
		view.Status = &StatusView{
			Severity: severity,
			HTML:     SanitizeMessage(status.Message),
			Text:     status.Message,
			Class:    th.Class(TokenStatusPrefix + severity),
		}
	}

	hidden := append([]HiddenField(nil), opts.Hidden...)
	if opts.IncludeVersion {
		hidden = append(hidden, Hidden(VersionFieldName, state.Version))
	}
	view.Hidden = mergeHidden(hidden...)

	fields := snap.Fields
	if len(fields) == 0 {
		fields = deriveFields(state, def.FieldOrder(state.Values))
	}
	view.Fields = make([]FieldView, 0, len(fields))
	for _, field := range fields {
		view.Fields = append(view.Fields, buildField(field, def, th, state))
	}
	return view
}

func deriveFields(state form.State, order []string) []form.FieldSnapshot {
	out := make([]form.FieldSnapshot, 0, len(order))
	for _, name := range order {
		message, hasError := state.Errors[name]
		touched := state.Touched[name]
		out = append(out, form.FieldSnapshot{
			Name:             name,
			Value:            state.Values[name],
			Error:            message,
			Touched:          touched,
			State:            form.ValidationStateFor(touched, hasError),
			FormIsSubmitting: state.Submitting,
		})
	}
	return out
}

func buildField(field form.FieldSnapshot, def definition.Definition, th *Theme, state form.State) FieldView {
	hints, ok := def.Field(field.Name)
	if !ok {
		hints = definition.Field{Name: field.Name, Label: field.Name, Kind: inferKind(field.Value)}
	}
	kind := hints.Kind
	if kind == "" {
		kind = definition.KindText
	}

	view := FieldView{
		Name:        field.Name,
		ID:          "field-" + strings.ReplaceAll(field.Name, ".", "-"),
		Label:       hints.Label,
		Help:        hints.Help,
		Kind:        kind,
		InputType:   inputType(kind),
		Placeholder: hints.Placeholder,
		Value:       formatValue(field.Value),
		Options:     append([]string(nil), hints.Options...),
		Touched:     field.Touched,
		State:       string(field.State),
		Class:       th.Class(TokenFieldPrefix + string(field.State)),
		Disabled:    state.Submitting || field.FormIsSubmitting,
		Hidden:      !def.Visible(field.Name, state.Values),
	}
	if checked, ok := field.Value.(bool); ok {
		view.Checked = checked
	}
	if field.Error != "" {
		view.ErrorHTML = SanitizeMessage(field.Error)
		view.ErrorText = field.Error
		view.HintClass = th.Class(TokenHintPrefix + string(field.State))
	}
	return view
}

func inferKind(value any) string {
	switch value.(type) {
	case bool:
		return definition.KindCheckbox
	case int, int32, int64, float32, float64, uint, uint32, uint64:
		return definition.KindNumber
	default:
		return definition.KindText
	}
}

func inputType(kind string) string {
	switch kind {
	case definition.KindPassword:
		return "password"
	case definition.KindNumber:
		return "number"
	case definition.KindCheckbox:
		return "checkbox"
	default:
		return "text"
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
