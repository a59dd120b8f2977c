package model

import (
	"fmt"
	"slices"
	"strings"
)

// DeletePrefix marks a key (or a list element) as a deletion request.
const DeletePrefix = "!"

// IsDeletion reports whether key is a deletion marker.
func IsDeletion(key string) bool {
	return len(key) > len(DeletePrefix) && strings.HasPrefix(key, DeletePrefix)
}

// DeletionTarget strips the deletion prefix from key.
func DeletionTarget(key string) string {
	if IsDeletion(key) {
		return key[len(DeletePrefix):]
	}
	return key
}

// DeletionKey returns the deletion marker for name.
func DeletionKey(name string) string {
	return DeletePrefix + name
}

// ResultingNames returns the instance names a folder holds after applying the
// keys of folder to a target that already holds existing. Plain keys add a
// name (keeping existing order), deletion markers remove one.
func ResultingNames(existing []string, folder *Dict) []string {
	names := slices.Clone(existing)
	for _, key := range folder.Keys() {
		if IsDeletion(key) {
			target := DeletionTarget(key)
			names = slices.DeleteFunc(names, func(n string) bool { return n == target })
			continue
		}
		if !slices.Contains(names, key) {
			names = append(names, key)
		}
	}
	return names
}

// Merge applies change to target in place. Deletion markers remove keys,
// nested mappings merge recursively, lists merge element-wise (see
// [MergeList]) and every other value replaces the target's.
func Merge(target, change *Dict) {
	change.Range(func(key string, value any) bool {
		if IsDeletion(key) {
			target.Delete(DeletionTarget(key))
			return true
		}
		existing, ok := target.Get(key)
		if !ok {
			target.Set(key, stripDeletions(CloneValue(value)))
			return true
		}
		if cd, isDict := value.(*Dict); isDict {
			if td, tok := existing.(*Dict); tok && td != nil {
				Merge(td, cd)
				return true
			}
			target.Set(key, stripDeletions(cd.Clone()))
			return true
		}
		if IsList(value) && (IsList(existing) || isSequenceOverString(value, existing)) {
			target.Set(key, MergeList(existing, value))
			return true
		}
		target.Set(key, CloneValue(value))
		return true
	})
}

// isSequenceOverString reports a sequence change against a one-element
// delimited string, which IsList cannot tell apart from a scalar.
func isSequenceOverString(value, existing any) bool {
	_, seq := value.([]any)
	_, str := existing.(string)
	return seq && str
}

// stripDeletions drops deletion markers from a value copied into a target
// that never held the deleted keys.
func stripDeletions(v any) any {
	d, ok := v.(*Dict)
	if !ok || d == nil {
		return v
	}
	for _, key := range d.Keys() {
		if IsDeletion(key) {
			d.Delete(key)
			continue
		}
		child, _ := d.Get(key)
		d.Set(key, stripDeletions(child))
	}
	return d
}

// IsList reports whether v is a list value: a sequence or a comma-delimited
// string.
func IsList(v any) bool {
	switch t := v.(type) {
	case []any, []string:
		return true
	case string:
		return strings.Contains(t, ",")
	default:
		return false
	}
}

// SplitList returns the elements of a list value. Strings are split on commas
// and trimmed; a scalar becomes a single element; nil yields nil.
func SplitList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return slices.Clone(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		parts := strings.Split(t, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}

// MergeList applies the element changes in change to existing: elements
// marked with [DeletePrefix] are removed, others are appended if absent.
// The result keeps the shape of existing (sequence or delimited string).
func MergeList(existing, change any) any {
	elems := SplitList(existing)
	for _, c := range SplitList(change) {
		if IsDeletion(c) {
			target := DeletionTarget(c)
			elems = slices.DeleteFunc(elems, func(e string) bool { return e == target })
			continue
		}
		if !slices.Contains(elems, c) {
			elems = append(elems, c)
		}
	}
	switch existing.(type) {
	case string, nil:
		return strings.Join(elems, ",")
	}
	out := make([]any, len(elems))
	for i, e := range elems {
		out[i] = e
	}
	return out
}
