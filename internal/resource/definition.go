// Package resource implements the generic record resource: the five record
// operations (list, get, create, update, delete), their HTTP binding, and
// decorators for the stores behind them.
package resource

import (
	"cmp"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jinzhu/copier"

	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
	"github.com/mesh-intelligence/campus/pkg/types"
)

// Definition describes one record type exposed as a resource.
type Definition[K cmp.Ordered, R types.Record[K]] struct {
	// TypeName names the record type in messages, e.g. "Articles".
	TypeName string

	// Path is the URL segment under /api, e.g. "articles".
	Path string

	// KeyParam is the query parameter carrying the key, e.g. "id".
	KeyParam string

	// Schema supplies the empty record and tells whether keys are assigned
	// by the store.
	Schema types.Schema[K, R]

	// ParseKey converts the key parameter into a key.
	ParseKey func(string) (K, error)

	// FromForm builds a record from create parameters. Store-keyed types
	// ignore any key parameter.
	FromForm func(f *Form) R
}

// storeKeyed reports whether the store assigns keys for this type.
func (d Definition[K, R]) storeKeyed() bool {
	return d.Schema.Sequence != nil
}

// parseKey wraps ParseKey failures as EInvalid errors.
func (d Definition[K, R]) parseKey(s string) (K, error) {
	if s == "" {
		var zero K
		return zero, &perrors.Error{
			Code: perrors.EInvalid,
			Msg:  fmt.Sprintf("required parameter '%s' is not present", d.KeyParam),
		}
	}
	k, err := d.ParseKey(s)
	if err != nil {
		return k, &perrors.Error{
			Code: perrors.EInvalid,
			Msg:  fmt.Sprintf("invalid %s %q", d.KeyParam, s),
			Err:  err,
		}
	}
	return k, nil
}

// bindForm builds a record from create parameters.
func (d Definition[K, R]) bindForm(values url.Values) (R, error) {
	f := NewForm(values)
	rec := d.FromForm(f)
	if err := f.Err(); err != nil {
		var zero R
		return zero, err
	}
	return rec, nil
}

// ParseInt64Key parses a numeric record key.
func ParseInt64Key(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// ParseStringKey accepts any non-empty key as is.
func ParseStringKey(s string) (string, error) {
	return s, nil
}

// ReplaceFields overwrites every field of dst with the fields of src and
// restores dst's key.
func ReplaceFields[K cmp.Ordered, R types.Record[K]](dst, src R) error {
	key := dst.RecordKey()
	if err := copier.Copy(dst, src); err != nil {
		return err
	}
	dst.SetRecordKey(key)
	return nil
}
