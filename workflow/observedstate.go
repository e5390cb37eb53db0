package workflow

import (
	"reflect"
	"sync"
)

// ObservedFieldOptions configures how an observed field participates in
// snapshots (spec.md §4.3.3).
type ObservedFieldOptions struct {
	// Hidden excludes the field from snapshots entirely.
	Hidden bool
	// Redact replaces the field's value with the literal string "***" in
	// snapshots.
	Redact bool
}

type observedFieldDescriptor struct {
	field string
	opts  ObservedFieldOptions
}

// observedRegistry is the class-side registry spec.md §9 describes for
// languages without field decorators: a map from (type) to the observed
// fields declared on it. Go's analogue of "superclasses" is embedded
// structs, so buildSnapshot walks the instance's embedding chain and merges
// descriptors registered against every embedded type, not just the leaf
// type.
var (
	observedRegistryMu sync.RWMutex
	observedRegistry   = map[reflect.Type][]observedFieldDescriptor{}
)

// ObservedState registers fieldName on the type of prototype as
// participating in SnapshotState output, with the given options. Call it
// once per field at package init, e.g.:
//
//	func init() {
//	    workflow.ObservedState(BatchJob{}, "APIKey", workflow.ObservedFieldOptions{Redact: true})
//	    workflow.ObservedState(BatchJob{}, "InternalCounter", workflow.ObservedFieldOptions{Hidden: true})
//	}
func ObservedState(prototype any, fieldName string, opts ObservedFieldOptions) {
	t := baseType(reflect.TypeOf(prototype))
	observedRegistryMu.Lock()
	defer observedRegistryMu.Unlock()
	observedRegistry[t] = append(observedRegistry[t], observedFieldDescriptor{field: fieldName, opts: opts})
}

func baseType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// descriptorsFor returns every observed-field descriptor registered for t
// and for any type embedded (directly or transitively) within t, duplicates
// removed by field name with the most specific (outermost) registration
// winning.
func descriptorsFor(t reflect.Type) []observedFieldDescriptor {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	observedRegistryMu.RLock()
	own := append([]observedFieldDescriptor(nil), observedRegistry[t]...)
	observedRegistryMu.RUnlock()

	seen := make(map[string]bool, len(own))
	out := make([]observedFieldDescriptor, 0, len(own))
	for _, d := range own {
		if !seen[d.field] {
			seen[d.field] = true
			out = append(out, d)
		}
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		for _, d := range descriptorsFor(baseType(f.Type)) {
			if !seen[d.field] {
				seen[d.field] = true
				out = append(out, d)
			}
		}
	}
	return out
}

// buildSnapshot walks instance's registered observed-field descriptors and
// produces the field-name -> value mapping SnapshotState stores on the
// node, honoring Hidden (omit) and Redact (replace with "***").
func buildSnapshot(instance any) map[string]any {
	v := reflect.ValueOf(instance)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return map[string]any{}
	}

	out := map[string]any{}
	for _, d := range descriptorsFor(v.Type()) {
		if d.opts.Hidden {
			continue
		}
		fv := v.FieldByName(d.field)
		if !fv.IsValid() {
			continue
		}
		if d.opts.Redact {
			out[d.field] = "***"
			continue
		}
		if fv.CanInterface() {
			out[d.field] = fv.Interface()
		}
	}
	return out
}
