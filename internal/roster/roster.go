package roster

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var (
	// ErrEmptyRoster indicates the roster file defined no units.
	ErrEmptyRoster = errors.New("roster: no units defined")
	// ErrDuplicateAlias indicates two units claim the same folded alias.
	ErrDuplicateAlias = errors.New("roster: alias maps to multiple units")
)

// Unit is one tracked work unit. Name is the canonical identifier used
// in folder layout and status output; Aliases list every spelling the
// unit may appear under in incoming filenames (team numbers, leader
// names, transliterations).
type Unit struct {
	Sequence int      `toml:"sequence"`
	SheetID  string   `toml:"sheet_id"`
	Team     int      `toml:"team"`
	Name     string   `toml:"name"`
	Leader   string   `toml:"leader"`
	Aliases  []string `toml:"aliases"`
}

// Identifiers returns the unit's name plus all aliases, folded, in
// declaration order with the canonical name first.
func (u Unit) Identifiers() []string {
	out := make([]string, 0, len(u.Aliases)+2)
	seen := make(map[string]struct{}, len(u.Aliases)+2)
	for _, raw := range append([]string{u.Name, u.Leader}, u.Aliases...) {
		folded := Fold(raw)
		if folded == "" {
			continue
		}
		if _, ok := seen[folded]; ok {
			continue
		}
		seen[folded] = struct{}{}
		out = append(out, folded)
	}
	return out
}

// Roster is the immutable, ordered set of tracked units.
type Roster struct {
	units   []Unit
	byAlias map[string]*Unit
}

type rosterFile struct {
	Units []Unit `toml:"unit"`
}

// Load reads a roster TOML file and builds the alias index. Every
// folded alias must resolve to exactly one unit.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var file rosterFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	return New(file.Units)
}

// New builds a roster from in-memory unit records.
func New(units []Unit) (*Roster, error) {
	if len(units) == 0 {
		return nil, ErrEmptyRoster
	}
	r := &Roster{
		units:   make([]Unit, len(units)),
		byAlias: make(map[string]*Unit),
	}
	copy(r.units, units)
	for i := range r.units {
		unit := &r.units[i]
		if strings.TrimSpace(unit.Name) == "" {
			return nil, fmt.Errorf("roster: unit %d has no name", i+1)
		}
		if unit.Sequence == 0 {
			unit.Sequence = i + 1
		}
		for _, alias := range unit.Identifiers() {
			if owner, ok := r.byAlias[alias]; ok && owner != unit {
				return nil, fmt.Errorf("%w: %q claimed by %s and %s",
					ErrDuplicateAlias, alias, owner.Name, unit.Name)
			}
			r.byAlias[alias] = unit
		}
	}
	return r, nil
}

// Units returns the tracked units in roster order.
func (r *Roster) Units() []Unit {
	out := make([]Unit, len(r.units))
	copy(out, r.units)
	return out
}

// Len reports the number of tracked units.
func (r *Roster) Len() int { return len(r.units) }

// Aliases returns every folded identifier across all units, ordered by
// unit then declaration order. This is the candidate set for identity
// matching.
func (r *Roster) Aliases() []string {
	var out []string
	for i := range r.units {
		out = append(out, r.units[i].Identifiers()...)
	}
	return out
}

// UnitForAlias resolves a matched identifier back to its unit. The
// alias is folded before lookup, so callers may pass raw matched text.
func (r *Roster) UnitForAlias(alias string) (Unit, bool) {
	unit, ok := r.byAlias[Fold(alias)]
	if !ok {
		return Unit{}, false
	}
	return *unit, true
}

// UnitByName looks a unit up by its canonical name.
func (r *Roster) UnitByName(name string) (Unit, bool) {
	return r.UnitForAlias(name)
}
