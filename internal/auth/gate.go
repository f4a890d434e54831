// Package auth decides which message senders receive generated replies.
package auth

import (
	"sort"
	"strings"

	"github.com/timmy/sentencebot/internal/domain"
	"golang.org/x/text/cases"
)

// Gate is an immutable mapping of authorized contact IDs.
// It is built once from a contact snapshot and is safe for concurrent lookups.
// Contacts added to the session later are not picked up until a new Gate is built.
type Gate struct {
	contacts map[string]domain.AuthorizedContact
}

// Build intersects the session contacts with the configured allow-list.
// A contact is authorized when its name matches a configured name ignoring case
// and it is either a saved personal contact or a group. Nameless contacts are skipped.
// Parameters:
//   - names: allow-listed display names.
//   - contacts: contact snapshot reported by the session.
// Returns:
//   - *Gate: lookup table keyed by contact ID.
func Build(names []string, contacts []domain.Contact) *Gate {
	fold := cases.Fold()

	allowed := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		allowed[fold.String(name)] = struct{}{}
	}

	g := &Gate{contacts: make(map[string]domain.AuthorizedContact)}
	for _, c := range contacts {
		if c.Name == "" || c.ID == "" {
			continue
		}
		if !c.IsMyContact && !c.IsGroup {
			continue
		}
		if _, ok := allowed[fold.String(c.Name)]; !ok {
			continue
		}
		g.contacts[c.ID] = domain.AuthorizedContact{
			ID:      c.ID,
			Name:    c.Name,
			IsGroup: c.IsGroup,
		}
	}

	return g
}

// IsAuthorized reports whether id belongs to an authorized contact.
func (g *Gate) IsAuthorized(id string) bool {
	if g == nil {
		return false
	}
	_, ok := g.contacts[id]
	return ok
}

// Lookup returns the authorized contact for id.
func (g *Gate) Lookup(id string) (domain.AuthorizedContact, bool) {
	if g == nil {
		return domain.AuthorizedContact{}, false
	}
	c, ok := g.contacts[id]
	return c, ok
}

// Len returns the number of authorized contacts.
func (g *Gate) Len() int {
	if g == nil {
		return 0
	}
	return len(g.contacts)
}

// Contacts returns the authorized contacts sorted by ID.
func (g *Gate) Contacts() []domain.AuthorizedContact {
	if g == nil {
		return nil
	}
	out := make([]domain.AuthorizedContact, 0, len(g.contacts))
	for _, c := range g.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
