package validation

import "context"

// Options controls a single validation pass.
type Options struct {
	// Exhaustive asks the validator to collect every violation instead of
	// stopping at the first one. Forms always validate exhaustively.
	Exhaustive bool
}

// Validator checks a value bag. It returns nil on success, Violations for
// structured failures, or any other error for unexpected failures.
type Validator interface {
	Validate(ctx context.Context, values map[string]any, opts Options) error
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(ctx context.Context, values map[string]any, opts Options) error

// Validate calls fn.
func (fn ValidatorFunc) Validate(ctx context.Context, values map[string]any, opts Options) error {
	return fn(ctx, values, opts)
}

// Chain runs validators in order and merges their Violations. In exhaustive
// mode every validator runs; otherwise the chain stops at the first failure.
// A non-structured error stops the chain immediately.
func Chain(validators ...Validator) Validator {
	filtered := make([]Validator, 0, len(validators))
	for _, v := range validators {
		if v != nil {
			filtered = append(filtered, v)
		}
	}
	return ValidatorFunc(func(ctx context.Context, values map[string]any, opts Options) error {
		var merged Violations
		for _, v := range filtered {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := v.Validate(ctx, values, opts)
			if err == nil {
				continue
			}
			violations, ok := AsViolations(err)
			if !ok {
				return err
			}
			merged = append(merged, violations...)
			if !opts.Exhaustive {
				break
			}
		}
		if len(merged) == 0 {
			return nil
		}
		return merged
	})
}
