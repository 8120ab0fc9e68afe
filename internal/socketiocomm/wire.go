package socketiocomm

import "sort"

// canonicalOrder is the deterministic rank order of a roster: identities in
// layout declaration order first, any leniently admitted extras after them
// in lexicographic order. It mirrors the rule group.Build applies, so the
// rank a peer derives from its roster position always matches the
// membership table built on top of it.
func canonicalOrder(expected, present []string) []string {
	presentSet := make(map[string]bool, len(present))
	for _, id := range present {
		presentSet[id] = true
	}

	out := make([]string, 0, len(present))
	for _, id := range expected {
		if presentSet[id] {
			out = append(out, id)
			delete(presentSet, id)
		}
	}

	extras := make([]string, 0, len(presentSet))
	for id := range presentSet {
		extras = append(extras, id)
	}
	sort.Strings(extras)
	return append(out, extras...)
}

// The socket.io parser hands event arguments over as decoded JSON values,
// so numbers arrive as float64 and arrays as []any. These helpers tolerate
// the native Go types too for in-process emits.

func firstString(args []any) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	s, ok := args[0].(string)
	return s, ok
}

func firstUint64(args []any) (uint64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	switch v := args[0].(type) {
	case float64:
		return uint64(v), true
	case int:
		return uint64(v), true
	case int64:
		return uint64(v), true
	case uint64:
		return v, true
	default:
		return 0, false
	}
}

func firstStrings(args []any) ([]string, bool) {
	if len(args) == 0 {
		return nil, false
	}
	switch v := args[0].(type) {
	case []string:
		return append([]string(nil), v...), true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
