package sqlshim

import (
	"reflect"

	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// walkNodes visits every *pg_query.Node reachable from n, calling fn on
// each before descending into it (so fn can replace *nd in place and the
// walk continues into the replacement). libpg_query's generated AST has
// no visitor of its own and enumerating its ~200 node kinds by hand would
// be unverifiable without a module cache to check field names against, so
// traversal is driven by reflection over the generated struct tags
// instead: any field that is a *pg_query.Node, a []*pg_query.Node, or a
// pointer/slice to another generated message is a possible path to more
// nodes and gets descended into; scalar fields are skipped.
func walkNodes(n *pg_query.Node, fn func(*pg_query.Node)) {
	visitValue(reflect.ValueOf(n), fn, map[uintptr]bool{})
}

func visitValue(v reflect.Value, fn func(*pg_query.Node), seen map[uintptr]bool) {
	if !v.IsValid() {
		return
	}
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return
		}
		if node, ok := v.Interface().(*pg_query.Node); ok {
			ptr := reflect.ValueOf(node).Pointer()
			if seen[ptr] {
				return
			}
			seen[ptr] = true
			fn(node)
			// fn may have replaced *node's contents (including its oneof);
			// re-read via v since node and v.Interface() share the pointer.
			visitValue(v.Elem(), fn, seen)
			return
		}
		ptr := v.Pointer()
		if seen[ptr] {
			return
		}
		seen[ptr] = true
		visitValue(v.Elem(), fn, seen)

	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			f := v.Field(i)
			if !f.CanInterface() {
				continue
			}
			visitField(f, fn, seen)
		}

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			visitField(v.Index(i), fn, seen)
		}

	case reflect.Interface:
		if !v.IsNil() {
			visitValue(v.Elem(), fn, seen)
		}
	}
}

func visitField(f reflect.Value, fn func(*pg_query.Node), seen map[uintptr]bool) {
	switch f.Kind() {
	case reflect.Ptr, reflect.Struct, reflect.Slice, reflect.Array, reflect.Interface:
		visitValue(f, fn, seen)
	default:
		// strings, ints, bools, enums: no nodes reachable.
	}
}

// walkFuncCalls is walkNodes narrowed to FuncCall nodes.
func walkFuncCalls(n *pg_query.Node, fn func(*pg_query.FuncCall)) {
	walkNodes(n, func(nd *pg_query.Node) {
		if fc := nd.GetFuncCall(); fc != nil {
			fn(fc)
		}
	})
}

// walkRangeVars is walkNodes narrowed to RangeVar nodes.
func walkRangeVars(n *pg_query.Node, fn func(*pg_query.RangeVar)) {
	walkNodes(n, func(nd *pg_query.Node) {
		if rv := nd.GetRangeVar(); rv != nil {
			fn(rv)
		}
	})
}
