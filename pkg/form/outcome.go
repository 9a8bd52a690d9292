package form

// Validity is the tri-state validity of a form.
type Validity int

const (
	// ValidityUnknown is reported until the first validation run settles.
	ValidityUnknown Validity = iota
	ValidityValid
	ValidityInvalid
)

func (v Validity) String() string {
	switch v {
	case ValidityValid:
		return "valid"
	case ValidityInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Outcome is the result of one validation pass. Outcomes are never modified
// after they are published; clearing a field error produces a new Outcome.
type Outcome struct {
	Valid  *bool
	Errors map[string]string
	Status *Status
}

var pendingOutcome = &Outcome{}

func validOutcome() *Outcome {
	valid := true
	return &Outcome{Valid: &valid}
}

// Validity reports the tri-state validity carried by the outcome.
func (o *Outcome) Validity() Validity {
	if o == nil || o.Valid == nil {
		return ValidityUnknown
	}
	if *o.Valid {
		return ValidityValid
	}
	return ValidityInvalid
}

// Error returns the message recorded for name, if any.
func (o *Outcome) Error(name string) string {
	if o == nil {
		return ""
	}
	return o.Errors[name]
}

// HasError reports whether name carries an error message.
func (o *Outcome) HasError(name string) bool {
	if o == nil {
		return false
	}
	_, ok := o.Errors[name]
	return ok
}

func (o *Outcome) withoutError(name string) *Outcome {
	if !o.HasError(name) {
		return o
	}
	next := &Outcome{Valid: o.Valid, Status: o.Status}
	if len(o.Errors) > 1 {
		next.Errors = make(map[string]string, len(o.Errors)-1)
		for key, msg := range o.Errors {
			if key != name {
				next.Errors[key] = msg
			}
		}
	}
	return next
}

func cloneErrors(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// MarshalText encodes the validity as its name.
func (v Validity) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a validity name; unknown names map to ValidityUnknown.
func (v *Validity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "valid":
		*v = ValidityValid
	case "invalid":
		*v = ValidityInvalid
	default:
		*v = ValidityUnknown
	}
	return nil
}
