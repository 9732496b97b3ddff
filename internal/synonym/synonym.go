// Package synonym implements the Synonym Resolver (C2, spec.md §4.2): a
// pure two-level-map lookup with current-schema → PUBLIC fallback.
package synonym

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
)

const public = "PUBLIC"

// Index is the owner → name → target map spec.md §9 prescribes, built
// once per migration session from the frozen Catalog.
type Index struct {
	log   *zap.SugaredLogger
	byKey map[string]map[string]catalog.QualifiedName
}

// Build constructs an Index from every Synonym currently in the Catalog.
func Build(synonyms []*catalog.Synonym, log *zap.SugaredLogger) *Index {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	idx := &Index{log: log, byKey: make(map[string]map[string]catalog.QualifiedName)}
	for _, s := range synonyms {
		owner := normalizeOwner(s.Owner)
		name := strings.ToLower(s.Name)
		if idx.byKey[owner] == nil {
			idx.byKey[owner] = make(map[string]catalog.QualifiedName)
		}
		if existing, ok := idx.byKey[owner][name]; ok {
			log.Warnw("synonym chain detected; synonyms do not chain in this system, keeping first hop",
				"owner", s.Owner, "name", s.Name, "firstHop", existing.String(), "secondHop", s.Target.String())
			continue
		}
		idx.byKey[owner][name] = s.Target
	}
	return idx
}

// Resolve looks up (currentSchema, name) then ("PUBLIC", name), returning
// false if neither exists (spec.md §4.2, §8 property 2).
func (idx *Index) Resolve(currentSchema, name string) (catalog.QualifiedName, bool) {
	name = strings.ToLower(name)

	if byName, ok := idx.byKey[normalizeOwner(currentSchema)]; ok {
		if target, ok := byName[name]; ok {
			return target, true
		}
	}
	if byName, ok := idx.byKey[public]; ok {
		if target, ok := byName[name]; ok {
			return target, true
		}
	}
	return catalog.QualifiedName{}, false
}

func normalizeOwner(owner string) string {
	return strings.ToUpper(owner)
}
