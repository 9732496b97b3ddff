package catalog

import (
	"sync"

	"github.com/google/uuid"
)

// EntityKind names one of the Catalog's entity maps. Used by migstep's
// Footprint to declare read/write sets without importing catalog's
// concrete types everywhere.
type EntityKind string

const (
	KindSchema     EntityKind = "schema"
	KindSynonym    EntityKind = "synonym"
	KindComposite  EntityKind = "composite"
	KindSequence   EntityKind = "sequence"
	KindTable      EntityKind = "table"
	KindView       EntityKind = "view"
	KindRoutine    EntityKind = "routine"
	KindTypeMethod EntityKind = "type-method"
	KindRowCount   EntityKind = "row-count"
)

// Catalog is the process-wide metadata store (spec.md §4.4). One instance
// is created per migration session. Populated strictly in the order
// listed in spec.md §4.4 by internal/extract; read-only afterward.
type Catalog struct {
	mu sync.RWMutex

	SessionID uuid.UUID

	schemas     map[string]struct{}
	synonyms    map[string]*Synonym
	composites  map[string]*CompositeType
	sequences   map[string]*Sequence
	tables      map[string]*Table
	views       map[string]*View
	routines    map[string]*Routine
	typeMethods map[string][]*TypeMethod // keyed by owner type
	rowCounts   map[string]int64
}

// New creates an empty Catalog.
func New() *Catalog {
	c := &Catalog{SessionID: uuid.New()}
	c.reset()
	return c
}

func (c *Catalog) reset() {
	c.schemas = make(map[string]struct{})
	c.synonyms = make(map[string]*Synonym)
	c.composites = make(map[string]*CompositeType)
	c.sequences = make(map[string]*Sequence)
	c.tables = make(map[string]*Table)
	c.views = make(map[string]*View)
	c.routines = make(map[string]*Routine)
	c.typeMethods = make(map[string][]*TypeMethod)
	c.rowCounts = make(map[string]int64)
}

// Reset clears every map (spec.md §4.4's reset contract). Callers that
// built caches derived from Catalog state (synonym indices, transformer
// indices) must discard them separately — Reset only owns storage it
// allocated itself.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// --- schemas ---

// AddSchema records a (non-excluded) schema name.
func (c *Catalog) AddSchema(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas[normalize(name)] = struct{}{}
}

// Schemas returns every known schema name.
func (c *Catalog) Schemas() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.schemas))
	for k := range c.schemas {
		out = append(out, k)
	}
	return out
}

// ReplaceSchemas atomically swaps the schema set (extractor restart
// contract, spec.md §4.5).
func (c *Catalog) ReplaceSchemas(names []string) {
	next := make(map[string]struct{}, len(names))
	for _, n := range names {
		next[normalize(n)] = struct{}{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas = next
}

// --- synonyms ---

// ReplaceSynonyms atomically swaps the synonym population.
func (c *Catalog) ReplaceSynonyms(synonyms []*Synonym) {
	next := make(map[string]*Synonym, len(synonyms))
	for _, s := range synonyms {
		next[synonymKey(s.Owner, s.Name)] = s
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.synonyms = next
}

// Synonyms returns every known synonym.
func (c *Catalog) Synonyms() []*Synonym {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Synonym, 0, len(c.synonyms))
	for _, s := range c.synonyms {
		out = append(out, s)
	}
	return out
}

func synonymKey(owner, name string) string {
	return normalize(owner) + "." + normalize(name)
}

// --- composite types ---

// ReplaceComposites atomically swaps the composite-type population.
func (c *Catalog) ReplaceComposites(types []*CompositeType) {
	next := make(map[string]*CompositeType, len(types))
	for _, t := range types {
		next[t.Name.key()] = t
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.composites = next
}

// Composite looks up a composite type by qualified name.
func (c *Catalog) Composite(q QualifiedName) (*CompositeType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.composites[q.key()]
	return t, ok
}

// Composites returns every known composite type.
func (c *Catalog) Composites() []*CompositeType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*CompositeType, 0, len(c.composites))
	for _, t := range c.composites {
		out = append(out, t)
	}
	return out
}

// --- sequences ---

// ReplaceSequences atomically swaps the sequence population.
func (c *Catalog) ReplaceSequences(seqs []*Sequence) {
	next := make(map[string]*Sequence, len(seqs))
	for _, s := range seqs {
		next[s.Name.key()] = s
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sequences = next
}

// Sequences returns every known sequence.
func (c *Catalog) Sequences() []*Sequence {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Sequence, 0, len(c.sequences))
	for _, s := range c.sequences {
		out = append(out, s)
	}
	return out
}

// --- tables ---

// ReplaceTables atomically swaps the table population (constraints are
// extracted inline per table, spec.md §4.4).
func (c *Catalog) ReplaceTables(tables []*Table) {
	next := make(map[string]*Table, len(tables))
	for _, t := range tables {
		next[t.Name.key()] = t
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = next
}

// Table looks up a table by qualified name.
func (c *Catalog) Table(q QualifiedName) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[q.key()]
	return t, ok
}

// Tables returns every known table.
func (c *Catalog) Tables() []*Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Table, 0, len(c.tables))
	for _, t := range c.tables {
		out = append(out, t)
	}
	return out
}

// --- views ---

// ReplaceViews atomically swaps the view population.
func (c *Catalog) ReplaceViews(views []*View) {
	next := make(map[string]*View, len(views))
	for _, v := range views {
		next[v.Name.key()] = v
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views = next
}

// Views returns every known view.
func (c *Catalog) Views() []*View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*View, 0, len(c.views))
	for _, v := range c.views {
		out = append(out, v)
	}
	return out
}

// --- routines ---

// ReplaceRoutines atomically swaps the routine population.
func (c *Catalog) ReplaceRoutines(routines []*Routine) {
	next := make(map[string]*Routine, len(routines))
	for _, r := range routines {
		next[r.Name.key()] = r
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routines = next
}

// Routines returns every known routine.
func (c *Catalog) Routines() []*Routine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Routine, 0, len(c.routines))
	for _, r := range c.routines {
		out = append(out, r)
	}
	return out
}

// --- type methods ---

// ReplaceTypeMethods atomically swaps the type-method population.
func (c *Catalog) ReplaceTypeMethods(methods []*TypeMethod) {
	next := make(map[string][]*TypeMethod)
	for _, m := range methods {
		k := m.OwnerType.key()
		next[k] = append(next[k], m)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typeMethods = next
}

// MethodsOf returns the methods declared on the given owner type.
func (c *Catalog) MethodsOf(owner QualifiedName) []*TypeMethod {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*TypeMethod(nil), c.typeMethods[owner.key()]...)
}

// --- row counts ---

// SetRowCount records the source row count captured at transfer start
// (spec.md §4.8's pre-step capture).
func (c *Catalog) SetRowCount(table QualifiedName, n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rowCounts[table.key()] = n
}

// RowCount returns the captured row count for a table, if any.
func (c *Catalog) RowCount(table QualifiedName) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.rowCounts[table.key()]
	return n, ok
}

// Snapshot is the read-only index set internal/sqltransform's Context
// builds once per migration session from the frozen Catalog (spec.md
// §4.12: "Indices are built once per migration session... and shared by
// all transformations in that session"). Unlike the Catalog itself,
// Snapshot is never mutated after construction, so it needs no mutex.
type Snapshot struct {
	Composites       map[string]*CompositeType // keyed by QualifiedName.key()
	ColumnTypes      map[string]TypeRef        // keyed by "table.key().column" (lowercase)
	Methods          map[string]*TypeMethod    // keyed by "type.key().method" (lowercase)
	PackageFunctions map[string]*Routine       // keyed by "package.function" (lowercase)
	Synonyms         map[string]QualifiedName  // keyed by "owner.name" (lowercase)
}

// Snapshot builds the transformer's index set from the current Catalog
// contents. Called once per migration session after extraction
// completes; the result is safe to share across every concurrent
// sqltransform.Transform call in that session since it is never mutated.
func (c *Catalog) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := &Snapshot{
		Composites:       make(map[string]*CompositeType, len(c.composites)),
		ColumnTypes:      make(map[string]TypeRef),
		Methods:          make(map[string]*TypeMethod),
		PackageFunctions: make(map[string]*Routine),
		Synonyms:         make(map[string]QualifiedName, len(c.synonyms)),
	}

	for k, t := range c.composites {
		s.Composites[k] = t
	}

	for _, t := range c.tables {
		for _, col := range t.Columns {
			s.ColumnTypes[t.Name.key()+"."+normalize(col.Name)] = col.Type
		}
	}

	for ownerKey, methods := range c.typeMethods {
		for _, m := range methods {
			s.Methods[ownerKey+"."+normalize(m.MethodName)] = m
		}
	}

	for _, r := range c.routines {
		if !r.PackageMember {
			continue
		}
		if idx := lastIndexByte(r.Name.Name, '.'); idx >= 0 {
			pkg := normalize(r.Name.Schema) + "." + normalize(r.Name.Name[:idx])
			fn := normalize(r.Name.Name[idx+1:])
			s.PackageFunctions[pkg+"."+fn] = r
		}
	}

	for _, syn := range c.synonyms {
		s.Synonyms[synonymKey(syn.Owner, syn.Name)] = syn.Target
	}

	return s
}

func normalize(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		out[i] = b
	}
	return string(out)
}
