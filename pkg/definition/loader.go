package definition

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/visibility"
)

// Load reads a single definition file from disk. Operation documents are
// resolved next to it.
func Load(filename string) (Definition, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Definition{}, fmt.Errorf("definition: read %s: %w", filename, err)
	}
	def, err := Parse(data, filepath.Base(filename))
	if err != nil {
		return Definition{}, err
	}
	def.fsys = os.DirFS(filepath.Dir(filename))
	return def, nil
}

// LoadFS walks fsys and parses every JSON/YAML definition. Files under a
// directory named "openapi" are skipped so documents can live alongside.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{definitions: make(map[string]Definition)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if entry.Name() == "openapi" {
				return fs.SkipDir
			}
			return nil
		}
		if !isDefinitionFile(name) {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("definition: read %s: %w", name, err)
		}
		def, err := Parse(data, name)
		if err != nil {
			return err
		}
		if _, exists := store.definitions[def.ID]; exists {
			return fmt.Errorf("definition: duplicate id %q (file %s)", def.ID, name)
		}
		def.fsys = fsys
		store.definitions[def.ID] = def
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse decodes a JSON or YAML definition. source names the file for errors
// and provides the default id.
func Parse(data []byte, source string) (Definition, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return Definition{}, err
	}
	return normaliseDefinition(doc, source)
}

// Definition returns the definition registered under id.
func (s *Store) Definition(id string) (Definition, bool) {
	if s == nil {
		return Definition{}, false
	}
	def, ok := s.definitions[id]
	return def, ok
}

// IDs lists the stored definition ids, sorted.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.definitions))
	for id := range s.definitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any definitions.
func (s *Store) Empty() bool {
	return s == nil || len(s.definitions) == 0
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("definition: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("definition: parse %s: invalid JSON or YAML: %w", source, err)
	}
	return doc, nil
}

func normaliseDefinition(doc documentFile, source string) (Definition, error) {
	id := strings.TrimSpace(doc.ID)
	if id == "" {
		base := path.Base(filepath.ToSlash(source))
		id = strings.TrimSuffix(base, path.Ext(base))
	}
	if id == "" || id == "." {
		return Definition{}, fmt.Errorf("definition: file %s has no id", source)
	}

	if doc.Schema != nil && doc.Operation != nil {
		return Definition{}, fmt.Errorf("definition: %q (file %s) sets both schema and operation", id, source)
	}
	if doc.Schema == nil && doc.Operation == nil {
		return Definition{}, fmt.Errorf("definition: %q (file %s) needs a schema or an operation", id, source)
	}
	if op := doc.Operation; op != nil {
		if strings.TrimSpace(op.Document) == "" || strings.TrimSpace(op.OperationID) == "" {
			return Definition{}, fmt.Errorf("definition: %q (file %s) operation needs document and operationId", id, source)
		}
	}

	submit, err := normaliseSubmit(doc.Submit, id, source)
	if err != nil {
		return Definition{}, err
	}

	fields := make([]Field, 0, len(doc.Fields))
	seen := make(map[string]struct{}, len(doc.Fields))
	var rules map[string]*visibility.Rule
	for idx, field := range doc.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return Definition{}, fmt.Errorf("definition: %q (file %s) field at index %d has no name", id, source, idx)
		}
		if _, exists := seen[name]; exists {
			return Definition{}, fmt.Errorf("definition: %q (file %s) defines duplicate field %q", id, source, name)
		}
		seen[name] = struct{}{}
		field.Name = name
		if field.Kind == "" {
			field.Kind = KindText
		}
		if field.Label == "" {
			field.Label = name
		}
		field.Options = append([]string(nil), field.Options...)
		field.VisibleWhen = strings.TrimSpace(field.VisibleWhen)
		if field.VisibleWhen != "" {
			rule, err := visibility.Compile(field.VisibleWhen)
			if err != nil {
				return Definition{}, fmt.Errorf("definition: %q (file %s) field %q visibleWhen: %w", id, source, name, err)
			}
			if rules == nil {
				rules = make(map[string]*visibility.Rule)
			}
			rules[name] = rule
		}
		fields = append(fields, field)
	}

	return Definition{
		ID:            id,
		Source:        source,
		Title:         strings.TrimSpace(doc.Title),
		Description:   strings.TrimSpace(doc.Description),
		InitialValues: doc.InitialValues,
		Schema:        doc.Schema,
		Operation:     doc.Operation,
		Fields:        fields,
		Submit:        submit,
		StrictFields:  doc.StrictFields,
		Reset:         doc.Reset,
		rules:         rules,
	}, nil
}

func normaliseSubmit(raw submitFile, id, source string) (SubmitConfig, error) {
	out := SubmitConfig{
		Message:  strings.TrimSpace(raw.Message),
		Severity: form.Severity(strings.ToLower(strings.TrimSpace(raw.Severity))),
	}
	switch out.Severity {
	case "":
		out.Severity = form.SeveritySuccess
	case form.SeverityInfo, form.SeverityWarning, form.SeverityDanger, form.SeveritySuccess:
	default:
		return SubmitConfig{}, fmt.Errorf("definition: %q (file %s) unknown submit severity %q", id, source, raw.Severity)
	}
	if value := strings.TrimSpace(raw.AutoHide); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return SubmitConfig{}, fmt.Errorf("definition: %q (file %s) submit autoHide: %w", id, source, err)
		}
		if d < 0 {
			return SubmitConfig{}, fmt.Errorf("definition: %q (file %s) submit autoHide must not be negative", id, source)
		}
		out.AutoHide = d
	}
	return out, nil
}

func isDefinitionFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
