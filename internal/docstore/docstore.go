// Package docstore wraps the hosted document database behind the small
// persistence vocabulary the rest of the system is allowed to use: get,
// set, partial update, de-duplicating array append, and numeric increment.
// There are no transactions, batched writes, or listeners.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by update paths when the target document does
// not exist.
var ErrNotFound = errors.New("document not found")

// Store is the entire persistence surface. One document per user,
// addressed by identity id.
type Store interface {
	// Get decodes the document into out. The second return is false when
	// the document does not exist (not an error).
	Get(ctx context.Context, collection, id string, out any) (bool, error)

	// Set overwrites the document, creating it if necessary.
	Set(ctx context.Context, collection, id string, doc any) error

	// UpdateFields sets the given fields on an existing document. Fails
	// with ErrNotFound if the document is missing.
	UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error

	// AppendToArrayField appends value to an array field as a
	// de-duplicating union: a value deep-equal to an existing element is
	// ignored. Fails with ErrNotFound if the document is missing.
	AppendToArrayField(ctx context.Context, collection, id, field string, value any) error

	// IncrementNumericField adds delta to a numeric field, creating the
	// field at delta if absent. Fails with ErrNotFound if the document is
	// missing.
	IncrementNumericField(ctx context.Context, collection, id, field string, delta int64) error
}
