package definition

import (
	"io/fs"
	"time"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/visibility"
)

// Store keeps parsed definitions keyed by id. Treat it as immutable after
// construction.
type Store struct {
	definitions map[string]Definition
}

// Definition describes one form.
type Definition struct {
	ID            string
	Source        string
	Title         string
	Description   string
	InitialValues map[string]any
	Schema        map[string]any
	Operation     *OperationRef
	Fields        []Field
	Submit        SubmitConfig
	StrictFields  bool
	Reset         ResetConfig

	fsys  fs.FS
	rules map[string]*visibility.Rule
}

// OperationRef points at the request body of an OpenAPI operation. Document
// is resolved relative to the definition file.
type OperationRef struct {
	Document    string `json:"document" yaml:"document"`
	OperationID string `json:"operationId" yaml:"operationId"`
}

// Field carries presentation hints for one value.
type Field struct {
	Name        string   `json:"name" yaml:"name"`
	Label       string   `json:"label" yaml:"label"`
	Help        string   `json:"help,omitempty" yaml:"help,omitempty"`
	Kind        string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
	VisibleWhen string   `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
}

// Field kinds understood by the renderers.
const (
	KindText     = "text"
	KindPassword = "password"
	KindNumber   = "number"
	KindCheckbox = "checkbox"
	KindSelect   = "select"
)

// SubmitConfig is the status shown after a successful submit.
type SubmitConfig struct {
	Message  string
	Severity form.Severity
	AutoHide time.Duration
}

// ResetConfig mirrors form.ResetPolicy.
type ResetConfig struct {
	Touched    bool `json:"touched" yaml:"touched"`
	Revalidate bool `json:"revalidate" yaml:"revalidate"`
}

type documentFile struct {
	ID            string         `json:"id" yaml:"id"`
	Title         string         `json:"title" yaml:"title"`
	Description   string         `json:"description" yaml:"description"`
	InitialValues map[string]any `json:"initialValues" yaml:"initialValues"`
	Schema        map[string]any `json:"schema" yaml:"schema"`
	Operation     *OperationRef  `json:"operation" yaml:"operation"`
	Fields        []Field        `json:"fields" yaml:"fields"`
	Submit        submitFile     `json:"submit" yaml:"submit"`
	StrictFields  bool           `json:"strictFields" yaml:"strictFields"`
	Reset         ResetConfig    `json:"reset" yaml:"reset"`
}

type submitFile struct {
	Message  string `json:"message" yaml:"message"`
	Severity string `json:"severity" yaml:"severity"`
	AutoHide string `json:"autoHide" yaml:"autoHide"`
}
