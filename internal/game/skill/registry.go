package skill

import (
	"fmt"
	"strings"

	"github.com/mkarren/duskmud/internal/game/actor"
)

// minPrefixLen is the minimum number of matched characters for an
// abbreviated skill-name lookup.
const minPrefixLen = 4

// Registry indexes skills by owning class and by normalized name. It is an
// explicit instance constructed at startup and passed by reference to every
// consumer; there is no package-level registry state.
type Registry struct {
	byClass map[string][]*Skill
	byName  map[string]*Skill
	ordered []*Skill
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byClass: make(map[string][]*Skill),
		byName:  make(map[string]*Skill),
	}
}

// Register validates and indexes skills under class. Names are normalized
// to lower case; exact-name collisions are rejected so lookup never has to
// break an exact tie.
//
// Precondition: class must be non-empty.
// Postcondition: on error, none of the given skills are registered.
func (r *Registry) Register(class string, skills ...*Skill) error {
	for _, s := range skills {
		s.Class = class
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := r.byName[normalize(s.Name)]; dup {
			return fmt.Errorf("skill %q: already registered", s.Name)
		}
	}
	for _, s := range skills {
		r.byClass[class] = append(r.byClass[class], s)
		r.byName[normalize(s.Name)] = s
		r.ordered = append(r.ordered, s)
	}
	return nil
}

// ForClass returns the skills registered under class, in registration order.
func (r *Registry) ForClass(class string) []*Skill {
	out := make([]*Skill, len(r.byClass[class]))
	copy(out, r.byClass[class])
	return out
}

// All returns every registered skill in registration order.
func (r *Registry) All() []*Skill {
	out := make([]*Skill, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Get returns the skill with the exact normalized name.
func (r *Registry) Get(name string) (*Skill, bool) {
	s, ok := r.byName[normalize(name)]
	return s, ok
}

// Lookup resolves input to a skill and returns the remainder of the input
// as putative target text.
//
// Resolution order: exact match on the whole input, exact match on the
// first word, then unambiguous prefix match on the first word — at least
// minPrefixLen matched characters, and the best match must be strictly
// longer than the runner-up; ties resolve to no match.
//
// Postcondition: ok is false when no unambiguous match exists.
func (r *Registry) Lookup(input string) (s *Skill, rest string, ok bool) {
	norm := normalize(input)
	if norm == "" {
		return nil, "", false
	}
	if s, found := r.byName[norm]; found {
		return s, "", true
	}

	token := norm
	remainder := ""
	if idx := strings.IndexByte(norm, ' '); idx >= 0 {
		token = norm[:idx]
		remainder = strings.TrimSpace(norm[idx+1:])
	}
	if s, found := r.byName[token]; found {
		return s, remainder, true
	}

	// Prefix match: score every registered name by the length of its
	// common prefix with the token.
	best, runnerUp := 0, 0
	var bestSkill *Skill
	for _, cand := range r.ordered {
		score := commonPrefixLen(normalize(cand.Name), token)
		if score > best {
			runnerUp = best
			best = score
			bestSkill = cand
		} else if score > runnerUp {
			runnerUp = score
		}
	}
	if best < minPrefixLen || best == runnerUp {
		return nil, "", false
	}
	return bestSkill, remainder, true
}

// Invoke resolves a target from args (character first, then object) and
// calls the skill's resolution function.
//
// Postcondition: returns false when the skill or its resolution function
// is missing; otherwise returns the resolver's result.
func (r *Registry) Invoke(gs GameState, user *actor.Actor, name, args string) bool {
	s, rest, ok := r.Lookup(name)
	if !ok || s.Resolve == nil {
		return false
	}
	targetText := strings.TrimSpace(args)
	if targetText == "" {
		targetText = rest
	}
	target := user
	if targetText != "" && gs != nil {
		if c := gs.FindCharacter(user, targetText); c != nil {
			target = c
		} else if _, found := gs.FindObject(user, targetText); found {
			target = nil
		} else if s.RequiresTarget {
			return false
		}
	}
	return s.Resolve(gs, user, target, targetText)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
