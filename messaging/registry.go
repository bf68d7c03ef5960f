package messaging

import (
	"reflect"
	"sort"
	"strings"
)

// NetworkContext is passed to every message's Receive entrypoint. Owner
// is the opaque owner handle supplied at registry construction; the core
// does not interpret it beyond passing it through.
type NetworkContext struct {
	Owner     any
	SenderID  uint64
	Timestamp float32
	Header    MessageHeader
}

// ReceiveFunc is the static entrypoint every admitted message type must
// expose: it decodes a payload from r and acts on ctx. A panic escaping
// ReceiveFunc is recovered and logged by the dispatcher in
// ProcessIncomingMessageQueue; it must never be allowed to stall
// dispatch of subsequent messages.
type ReceiveFunc func(r *BufferReader, ctx *NetworkContext) error

// Serializer is implemented by application message values passed to
// Core.SendMessage. Serialize appends the message's payload to w, whose
// ceiling is the per-delivery maximum payload bound.
type Serializer interface {
	Serialize(w *BufferWriter) error
}

// DefaultOwner is the canonical "admissible default owner" type. A
// Descriptor with an Unbound OwnerBinding is admitted only when the
// owner handle passed to NewRegistry is nil or has this type.
type DefaultOwner struct{}

// OwnerBinding decides which owner handles admit a Descriptor. The zero
// value is Unbound.
type OwnerBinding struct {
	bound []reflect.Type // nil means Unbound
}

// Unbound returns a binding admitted only for the canonical default
// owner (DefaultOwner{} or a nil owner handle).
func Unbound() OwnerBinding {
	return OwnerBinding{}
}

// BoundTo returns a binding admitted when the registry's owner handle's
// runtime type matches one of owners' runtime types. Passing a nil
// interface value in owners matches a nil owner handle.
func BoundTo(owners ...any) OwnerBinding {
	types := make([]reflect.Type, len(owners))
	for i, o := range owners {
		types[i] = reflect.TypeOf(o)
	}
	return OwnerBinding{bound: types}
}

// admits reports whether this binding admits the given owner handle.
func (b OwnerBinding) admits(owner any) bool {
	ownerType := reflect.TypeOf(owner)
	if b.bound == nil {
		return ownerType == nil || ownerType == reflect.TypeOf(DefaultOwner{})
	}
	for _, t := range b.bound {
		if t == ownerType {
			return true
		}
	}
	return false
}

// TypeName returns the fully qualified Go type name of v, used both as
// a Descriptor's Name at registration and, by SendMessage, to look up
// the tag for an outbound message's concrete type. Registering a
// message type's Descriptor.Name as TypeName(ZeroValue) keeps the two
// call sites in sync without a hand-maintained string identifier.
func TypeName(v any) string {
	return reflect.TypeOf(v).String()
}

// Descriptor describes one candidate application message type. Types
// register themselves into a Catalog at package-init time (the
// link-time registry pattern), the same way the teacher's transport
// package binds a handler to a PacketType with RegisterHandler, except
// here registration precedes tag assignment rather than keying an
// already-dense tag space.
type Descriptor struct {
	// Name is the fully qualified type name used for the stable sort
	// that assigns tags. Comparison is byte-ordinal, not locale-aware.
	Name string

	// OwnerBinding decides which owner handles admit this type.
	OwnerBinding OwnerBinding

	// Receive is the static entrypoint. A nil Receive makes registry
	// construction fail with ErrInvalidMessageStructure.
	Receive ReceiveFunc
}

// Catalog is a builder collecting candidate Descriptors before a
// Registry freezes the admitted subset. A Catalog is not safe for
// concurrent Register calls; populate it during package init before any
// Registry is built.
type Catalog struct {
	descriptors []Descriptor
}

// NewCatalog returns an empty builder.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Register adds a candidate Descriptor to the catalog. Order of
// registration does not matter: NewRegistry sorts admitted descriptors
// by Name before assigning tags.
func (c *Catalog) Register(d Descriptor) {
	c.descriptors = append(c.descriptors, d)
}

// Registry maps each admitted message type to a dense MessageTag in
// [0, N) and back. It is built once at construction and frozen
// thereafter; its tables are logically immutable and require no
// locking.
type Registry struct {
	handlers []ReceiveFunc // tag -> handler, eagerly bound
	names    []string      // tag -> type name, for hook observability
	byName   map[string]MessageTag
	owner    any
}

// NewRegistry filters catalog's descriptors by ownerBinding.admits(owner),
// sorts the admitted subset by Name using byte-ordinal comparison, and
// assigns tags 0..N-1 in that order. It fails with
// ErrInvalidMessageStructure if any admitted descriptor has a nil
// Receive.
func NewRegistry(owner any, catalog *Catalog) (*Registry, error) {
	admitted := make([]Descriptor, 0, len(catalog.descriptors))
	for _, d := range catalog.descriptors {
		if d.OwnerBinding.admits(owner) {
			admitted = append(admitted, d)
		}
	}

	sort.Slice(admitted, func(i, j int) bool {
		return strings.Compare(admitted[i].Name, admitted[j].Name) < 0
	})

	r := &Registry{
		handlers: make([]ReceiveFunc, len(admitted)),
		names:    make([]string, len(admitted)),
		byName:   make(map[string]MessageTag, len(admitted)),
		owner:    owner,
	}
	for i, d := range admitted {
		if d.Receive == nil {
			return nil, ErrInvalidMessageStructure
		}
		r.handlers[i] = d.Receive
		r.names[i] = d.Name
		r.byName[d.Name] = MessageTag(i)
	}
	return r, nil
}

// Len returns the number of admitted message types (N).
func (r *Registry) Len() int { return len(r.handlers) }

// OwnerHandle returns the opaque owner handle this registry was built
// with, placed in each inbound NetworkContext.
func (r *Registry) OwnerHandle() any { return r.owner }

// TagFor returns the tag assigned to the message type named name, and
// whether it was found.
func (r *Registry) TagFor(name string) (MessageTag, bool) {
	tag, ok := r.byName[name]
	return tag, ok
}

// NameFor returns the type name for tag, for hook observability.
func (r *Registry) NameFor(tag MessageTag) (string, bool) {
	if int(tag) >= len(r.names) {
		return "", false
	}
	return r.names[tag], true
}

// handlerFor returns the bound handler for tag, and whether tag is
// within [0, N).
func (r *Registry) handlerFor(tag MessageTag) (ReceiveFunc, bool) {
	if int(tag) >= len(r.handlers) {
		return nil, false
	}
	return r.handlers[tag], true
}
