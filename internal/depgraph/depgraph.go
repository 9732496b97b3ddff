// Package depgraph implements the Dependency Orderer (C3, spec.md §4.3):
// a deterministic DFS-based topological sort over any node exposing its
// qualified name and its dependency edges, used for both composite-type
// graphs and FK-constraint graphs.
package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
)

// Node is anything the orderer can sort: a composite type (dependencies =
// attribute types) or an FK constraint (dependencies = referenced table).
type Node interface {
	QualifiedName() catalog.QualifiedName
	DependsOn() []catalog.QualifiedName
}

type color int

const (
	white color = iota
	grey
	black
)

// Order returns nodes such that every node appears after all of its
// dependencies (spec.md §8 property 3). Ties are broken by (schema, name)
// by sorting the initial node order before DFS, so output is deterministic
// across runs for the same input set. On a cycle, returns
// migerr.ErrDependencyCycle wrapped with the cycle's members listed.
func Order[T Node](nodes []T) ([]T, error) {
	byKey := make(map[string]T, len(nodes))
	index := make(map[string]int, len(nodes))
	keys := make([]string, 0, len(nodes))
	for i, n := range nodes {
		k := keyOf(n.QualifiedName())
		byKey[k] = n
		index[k] = i
		keys = append(keys, k)
	}
	sort.Strings(keys)

	colors := make(map[string]color, len(nodes))
	var order []string
	var stack []string // path for cycle reporting

	var visit func(k string) error
	visit = func(k string) error {
		switch colors[k] {
		case black:
			return nil
		case grey:
			// Back-edge to a grey node: cycle. Report the cycle segment
			// of the current path, from the first occurrence of k to here.
			cycle := cycleFrom(stack, k)
			return migerr.Wrap(migerr.Dependency, "", fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")), migerr.ErrDependencyCycle)
		}

		colors[k] = grey
		stack = append(stack, k)

		n, known := byKey[k]
		if known {
			deps := make([]string, 0, len(n.DependsOn()))
			for _, d := range n.DependsOn() {
				deps = append(deps, keyOf(d))
			}
			sort.Strings(deps)
			for _, dk := range deps {
				if _, inSet := byKey[dk]; !inSet {
					// Dependency outside the sorted set (e.g. a built-in
					// type, or a table not part of this FK graph) is not
					// an edge we need to order against.
					continue
				}
				if err := visit(dk); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		colors[k] = black
		order = append(order, k)
		return nil
	}

	for _, k := range keys {
		if colors[k] == white {
			if err := visit(k); err != nil {
				return nil, err
			}
		}
	}

	result := make([]T, 0, len(nodes))
	for _, k := range order {
		result = append(result, byKey[k])
	}
	return result, nil
}

func keyOf(q catalog.QualifiedName) string {
	return strings.ToLower(q.Schema) + "." + strings.ToLower(q.Name)
}

func cycleFrom(stack []string, target string) []string {
	for i, k := range stack {
		if k == target {
			cycle := append([]string(nil), stack[i:]...)
			return append(cycle, target)
		}
	}
	return append(append([]string(nil), stack...), target)
}
