package resource

import (
	"fmt"
	"net/url"

	"github.com/spf13/cast"
	"go.uber.org/multierr"

	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
	"github.com/mesh-intelligence/campus/pkg/types"
)

// Form reads typed create parameters. Problems are collected rather than
// returned one at a time; check Err after reading every field.
type Form struct {
	values url.Values
	errs   error
}

func NewForm(values url.Values) *Form {
	return &Form{values: values}
}

func (f *Form) lookup(name string) (string, bool) {
	vs, ok := f.values[name]
	if !ok || len(vs) == 0 {
		f.errs = multierr.Append(f.errs, fmt.Errorf("required parameter '%s' is not present", name))
		return "", false
	}
	return vs[0], true
}

// String returns the required parameter name.
func (f *Form) String(name string) string {
	v, _ := f.lookup(name)
	return v
}

// Bool returns the required boolean parameter name.
func (f *Form) Bool(name string) bool {
	v, ok := f.lookup(name)
	if !ok {
		return false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		f.errs = multierr.Append(f.errs, fmt.Errorf("parameter '%s': %q is not a boolean", name, v))
		return false
	}
	return b
}

// LocalDateTime returns the required date-time parameter name.
func (f *Form) LocalDateTime(name string) types.LocalDateTime {
	v, ok := f.lookup(name)
	if !ok {
		return types.LocalDateTime{}
	}
	d, err := types.ParseLocalDateTime(v)
	if err != nil {
		f.errs = multierr.Append(f.errs, fmt.Errorf("parameter '%s': %w", name, err))
		return types.LocalDateTime{}
	}
	return d
}

// Err returns every problem found so far as one EInvalid error.
func (f *Form) Err() error {
	if f.errs == nil {
		return nil
	}
	return &perrors.Error{
		Code: perrors.EInvalid,
		Msg:  f.errs.Error(),
		Err:  f.errs,
	}
}
