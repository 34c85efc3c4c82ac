package memo

import (
	"errors"

	"github.com/vnykmshr/memo-go/internal/equality"
)

var (
	// ErrNotEncodable is returned when a Serialized-strategy call receives
	// an argument with no canonical encoding (a function, a channel, a
	// cyclic structure). The underlying method is not invoked and the slot
	// is left untouched.
	ErrNotEncodable = equality.ErrNotEncodable

	// ErrAlreadyRegistered is returned when a (type, method) pair is
	// registered twice. Registration happens once, at package init.
	ErrAlreadyRegistered = errors.New("memo: method already registered")

	// ErrDescriptorMismatch is returned when a descriptor is used with an
	// instance of a different type than it was registered for.
	ErrDescriptorMismatch = errors.New("memo: descriptor does not match instance type")

	// ErrRemoteReference is returned when a Reference-strategy descriptor is
	// invoked on an engine backed by a remote slot store. Identity does not
	// serialize; only Serialized-strategy methods can use a remote store.
	ErrRemoteReference = errors.New("memo: reference strategy requires an in-memory store")
)
