package sqltransform

import (
	"fmt"

	"github.com/Sayiza/orapgsync-sub005/internal/sqlparse"
)

// outerJoinState is the two-phase pass's state machine (spec.md §4.11):
// Scanning (walking WHERE) -> Collected (all `(+)` predicates captured)
// -> Emitting (writing FROM with synthesised joins) -> Done. Only one
// pass through the tree; no back-tracking. The setter below checks
// transitions explicitly so an out-of-order call is a programming error
// caught immediately, not a silent misemission.
type outerJoinState int

const (
	stateScanning outerJoinState = iota
	stateCollected
	stateEmitting
	stateDone
)

func (s outerJoinState) String() string {
	switch s {
	case stateScanning:
		return "Scanning"
	case stateCollected:
		return "Collected"
	case stateEmitting:
		return "Emitting"
	case stateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// joinPredicate is one `a.col = b.col(+)` (or reversed) equality found
// while scanning WHERE.
type joinPredicate struct {
	outerAlias, outerCol string // the side WITHOUT (+): stays on the preserving side
	innerAlias, innerCol string // the side WITH (+): becomes the nullable/joined side
}

// outerJoinPass carries the collected predicates for one query block's
// WHERE/FROM emission and the non-join residue left in WHERE.
type outerJoinPass struct {
	state      outerJoinState
	byInner    map[string][]joinPredicate // keyed by innerAlias
	innerOrder []string                   // first-seen order, for deterministic output
	residue    []*sqlparse.Node           // WHERE conjuncts that are not outer-join predicates
}

func newOuterJoinPass() *outerJoinPass {
	return &outerJoinPass{byInner: make(map[string][]joinPredicate)}
}

func (p *outerJoinPass) transition(to outerJoinState) {
	valid := map[outerJoinState]outerJoinState{
		stateScanning:  stateCollected,
		stateCollected: stateEmitting,
		stateEmitting:  stateDone,
	}
	want, ok := valid[p.state]
	if !ok || want != to {
		panic(fmt.Sprintf("sqltransform: invalid outer-join state transition %s -> %s", p.state, to))
	}
	p.state = to
}

// scanWhere flattens a WHERE expression tree into AND-conjuncts, pulls
// out every `(+)`-marked equality into the join map, and keeps the rest
// as residue. Must be called exactly once, while in stateScanning.
func (p *outerJoinPass) scanWhere(where *sqlparse.Node) {
	if p.state != stateScanning {
		panic("sqltransform: scanWhere called outside Scanning state")
	}
	for _, conjunct := range flattenAnd(where) {
		if pred, ok := asOuterJoinPredicate(conjunct); ok {
			key := normalize(pred.innerAlias)
			p.byInner[key] = append(p.byInner[key], pred)
			if !containsString(p.innerOrder, pred.innerAlias) {
				p.innerOrder = append(p.innerOrder, key)
			}
			continue
		}
		p.residue = append(p.residue, conjunct)
	}
	p.transition(stateCollected)
}

// predicatesFor returns the join predicates collected for the table
// whose alias is joined in as "inner" (the (+) side), consuming the
// Collected->Emitting transition on first call and Emitting->Done once
// FROM emission is complete (signalled by the caller via finishEmitting).
func (p *outerJoinPass) predicatesFor(alias string) []joinPredicate {
	if p.state == stateCollected {
		p.transition(stateEmitting)
	}
	return p.byInner[normalize(alias)]
}

func (p *outerJoinPass) finishEmitting() {
	if p.state == stateEmitting {
		p.transition(stateDone)
	}
}

func flattenAnd(n *sqlparse.Node) []*sqlparse.Node {
	if n == nil {
		return nil
	}
	if n.Rule == "AndExpr" {
		var out []*sqlparse.Node
		out = append(out, flattenAnd(n.Children[0])...)
		out = append(out, flattenAnd(n.Children[1])...)
		return out
	}
	return []*sqlparse.Node{n}
}

// asOuterJoinPredicate recognizes `a.col = b.col(+)` and `a.col(+) = b.col`
// shapes. The side carrying the trailing "(+)" token on its GeneralElement
// node becomes the inner (nullable/joined) side.
func asOuterJoinPredicate(n *sqlparse.Node) (joinPredicate, bool) {
	if n.Rule != "ComparisonExpr" || len(n.Tokens) == 0 || n.Tokens[0].Text != "=" {
		return joinPredicate{}, false
	}
	left, right := n.Children[0], n.Children[1]

	leftMarked := isOuterMarked(left)
	rightMarked := isOuterMarked(right)
	if leftMarked == rightMarked {
		return joinPredicate{}, false // both or neither marked: not a (+) predicate
	}

	outer, inner := right, left
	if rightMarked {
		outer, inner = left, right
	}

	outerAlias, outerCol, ok1 := aliasAndColumn(outer)
	innerAlias, innerCol, ok2 := aliasAndColumn(inner)
	if !ok1 || !ok2 {
		return joinPredicate{}, false
	}
	return joinPredicate{outerAlias: outerAlias, outerCol: outerCol, innerAlias: innerAlias, innerCol: innerCol}, true
}

func isOuterMarked(n *sqlparse.Node) bool {
	if n.Rule != "GeneralElement" || len(n.Tokens) == 0 {
		return false
	}
	return n.Tokens[len(n.Tokens)-1].Text == "(+)"
}

func aliasAndColumn(n *sqlparse.Node) (alias, column string, ok bool) {
	if n.Rule != "GeneralElement" || len(n.Children) != 2 {
		return "", "", false
	}
	return n.Children[0].Text(), n.Children[1].Text(), true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == normalize(needle) {
			return true
		}
	}
	return false
}
