package runtime

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/lua-runtime/engine"
	"github.com/wippyai/lua-runtime/errors"
)

// Kind identifies the value kind of a binding entry.
type Kind int

const (
	KindString Kind = iota
	KindBoolean
	KindNumber
	KindInteger
	KindFunction
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindFunction:
		return "function"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// binding is one recorded global assignment, replayed into every fresh
// state so bound values survive a restart.
type binding struct {
	value   any
	name    string
	typeTag string // object bindings only
	kind    Kind
}

// bindingSet is an insertion-ordered record of bound globals. A name is
// unique across all kinds simultaneously; rebinding under the same kind
// overwrites.
type bindingSet struct {
	entries map[string]*binding
	order   []string
}

func newBindingSet() bindingSet {
	return bindingSet{entries: make(map[string]*binding)}
}

func (b *bindingSet) put(name string, kind Kind, value any, typeTag string) error {
	if e, ok := b.entries[name]; ok {
		if e.kind != kind {
			return errors.DuplicateBinding(name, e.kind.String())
		}
		e.value = value
		e.typeTag = typeTag
		return nil
	}
	b.entries[name] = &binding{name: name, kind: kind, value: value, typeTag: typeTag}
	b.order = append(b.order, name)
	return nil
}

// remove drops the entry regardless of kind. Removing an unknown name is
// a no-op.
func (b *bindingSet) remove(name string) {
	if _, ok := b.entries[name]; !ok {
		return
	}
	delete(b.entries, name)
	for i, n := range b.order {
		if n == name {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// apply sets the entry as a global in the given state.
func (e *binding) apply(v *engine.View) {
	switch e.kind {
	case KindString:
		v.SetString(e.name, e.value.(string))
	case KindBoolean:
		v.SetBoolean(e.name, e.value.(bool))
	case KindNumber:
		v.SetNumber(e.name, e.value.(float64))
	case KindInteger:
		v.SetInteger(e.name, e.value.(int64))
	case KindFunction:
		v.SetFunction(e.name, e.value.(lua.LGFunction))
	case KindObject:
		v.SetObject(e.name, e.value, e.typeTag)
	}
}

// replay applies every entry in insertion order.
func (b *bindingSet) replay(v *engine.View) {
	for _, name := range b.order {
		b.entries[name].apply(v)
	}
}
