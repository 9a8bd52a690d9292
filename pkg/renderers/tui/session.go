package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/form"
)

const defaultMaxAttempts = 3

var errNotANumber = errors.New("not a number")

// Session walks a Form field by field on a terminal. Every answer goes through
// the field's event adapters (focus, value change, blur) and a field is asked
// again while its validation error persists.
type Session struct {
	form          *form.Form
	def           definition.Definition
	driver        PromptDriver
	theme         Theme
	logger        *zap.Logger
	maxAttempts   int
	confirmSubmit bool
}

// NewSession binds f to a prompt driver. def supplies labels, kinds and the
// field order; it may be the zero Definition.
func NewSession(f *form.Form, def definition.Definition, options ...Option) (*Session, error) {
	if f == nil {
		return nil, ErrFormRequired
	}
	s := &Session{
		form:        f,
		def:         def,
		logger:      zap.NewNop(),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s, nil
}

// Run prompts every visible field, asks again for the ones still invalid, then
// submits and waits for the handler. The resulting status is printed; a
// danger status is reported as ErrSubmitFailed.
func (s *Session) Run(ctx context.Context) error {
	if err := s.form.Wait(ctx); err != nil {
		return err
	}
	if s.def.Title != "" {
		if err := s.driver.Info(ctx, s.theme.InfoPrefix+s.def.Title); err != nil {
			return err
		}
	}

	fields := s.fields()
	for _, name := range fields {
		if !s.visible(name) {
			s.logger.Debug("tui: skipping hidden field", zap.String("field", name))
			continue
		}
		if err := s.prompt(ctx, name); err != nil {
			return err
		}
	}
	if err := s.settle(ctx, fields); err != nil {
		return err
	}

	if s.confirmSubmit {
		ok, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: s.theme.PromptPrefix + "Submit?",
			Default: true,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}

	if err := s.form.Submit(ctx); err != nil {
		return fmt.Errorf("tui: submit: %w", err)
	}
	if err := s.form.Wait(ctx); err != nil {
		return err
	}
	status := s.form.Status()
	if status == nil {
		return nil
	}
	s.logger.Debug("tui: submit finished",
		zap.String("severity", string(status.Severity)),
		zap.String("message", status.Message),
	)
	if status.Severity == form.SeverityDanger {
		if err := s.driver.Info(ctx, s.theme.ErrorPrefix+formatStatus(status)); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrSubmitFailed, status.Message)
	}
	return s.driver.Info(ctx, s.theme.InfoPrefix+formatStatus(status))
}

// settle re-prompts fields that are still invalid once every field has been
// visited, e.g. because a later answer invalidated an earlier one.
func (s *Session) settle(ctx context.Context, fields []string) error {
	for round := 1; ; round++ {
		if err := s.form.Wait(ctx); err != nil {
			return err
		}
		if s.form.Validity() != form.ValidityInvalid {
			return nil
		}

		var failing []string
		for _, name := range fields {
			if s.visible(name) && s.form.Field(name).Error() != "" {
				failing = append(failing, name)
			}
		}
		if len(failing) == 0 {
			message := "validation failed"
			if status := s.form.Status(); status != nil && status.Message != "" {
				message = status.Message
			}
			if err := s.driver.Info(ctx, s.theme.ErrorPrefix+message); err != nil {
				return err
			}
			return fmt.Errorf("%w: %s", ErrInvalid, message)
		}
		if round > s.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, strings.Join(failing, ", "))
		}
		for _, name := range failing {
			if err := s.prompt(ctx, name); err != nil {
				return err
			}
		}
	}
}

func (s *Session) prompt(ctx context.Context, name string) error {
	field := s.form.Field(name)
	hints := s.hints(name, field.Value())

	for attempt := 1; ; attempt++ {
		field.HandleFocus()

		value, err := s.ask(ctx, hints, field.Value())
		switch {
		case errors.Is(err, errNotANumber):
			if err := s.driver.Info(ctx, s.theme.ErrorPrefix+hints.Label+": "+err.Error()); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			field.HandleValueChange(value)
			field.HandleBlur()
			if err := s.form.Wait(ctx); err != nil {
				return err
			}
			message := field.Error()
			if message == "" {
				return nil
			}
			s.logger.Debug("tui: answer rejected", zap.String("field", name), zap.String("error", message))
			if err := s.driver.Info(ctx, s.theme.ErrorPrefix+hints.Label+": "+message); err != nil {
				return err
			}
		}
		if attempt >= s.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, name)
		}
	}
}

func (s *Session) ask(ctx context.Context, hints definition.Field, current any) (any, error) {
	cfg := InputConfig{
		Message: s.theme.PromptPrefix + hints.Label,
		Default: formatValue(current),
		Help:    hints.Help,
	}

	switch hints.Kind {
	case definition.KindCheckbox:
		checked, _ := current.(bool)
		answer, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: cfg.Message,
			Default: checked,
			Help:    cfg.Help,
		})
		if err != nil {
			return nil, err
		}
		return answer, nil
	case definition.KindSelect:
		if len(hints.Options) == 0 {
			return nil, fmt.Errorf("%w: %s has no options", ErrInvalidChoice, hints.Name)
		}
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      cfg.Message,
			Options:      hints.Options,
			DefaultIndex: indexOf(hints.Options, cfg.Default),
			Help:         cfg.Help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(hints.Options) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidChoice, hints.Name)
		}
		return hints.Options[idx], nil
	case definition.KindPassword:
		return s.driver.Password(ctx, cfg)
	case definition.KindNumber:
		raw, err := s.driver.Input(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return parseNumber(raw)
	default:
		return s.driver.Input(ctx, cfg)
	}
}

func (s *Session) visible(name string) bool {
	return s.def.Visible(name, s.form.Values())
}

func (s *Session) hints(name string, value any) definition.Field {
	hints, ok := s.def.Field(name)
	if !ok {
		hints = definition.Field{Name: name, Kind: kindOf(value)}
	}
	if hints.Label == "" {
		hints.Label = name
	}
	if hints.Kind == "" {
		hints.Kind = definition.KindText
	}
	return hints
}

// fields lists the prompt order: declared fields first, nested objects
// flattened into dotted leaves.
func (s *Session) fields() []string {
	values := s.form.Values()
	var out []string
	for _, name := range s.def.FieldOrder(values) {
		out = appendLeaves(out, name, values[name])
	}
	return out
}

func appendLeaves(out []string, name string, value any) []string {
	nested, ok := value.(map[string]any)
	if !ok || len(nested) == 0 {
		return append(out, name)
	}
	keys := make([]string, 0, len(nested))
	for key := range nested {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		out = appendLeaves(out, name+"."+key, nested[key])
	}
	return out
}

func kindOf(value any) string {
	switch value.(type) {
	case bool:
		return definition.KindCheckbox
	case int, int32, int64, float32, float64, uint, uint32, uint64:
		return definition.KindNumber
	default:
		return definition.KindText
	}
}

func parseNumber(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, errNotANumber
	}
	return f, nil
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

func formatStatus(status *form.Status) string {
	severity := status.Severity
	if severity == "" {
		severity = form.SeverityInfo
	}
	return "[" + string(severity) + "] " + status.Message
}
