package report

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/panbanda/complore/pkg/tree"
)

// RootSectionID identifies the top-level section.
const RootSectionID = "root"

// SectionID returns the id of the child section name under parent.
func SectionID(parent, name string) string {
	if parent == "" {
		parent = RootSectionID
	}
	if name == "" {
		return parent
	}
	return parent + "/" + name
}

// SectionIDs lists the id of every collapsible section in render order.
// Compactable folders render as a single row and have no section.
func SectionIDs(t *tree.Tree) []string {
	var ids []string
	var walk func(n *tree.Node, id string)
	walk = func(n *tree.Node, id string) {
		if n.IsCompactable() {
			return
		}
		ids = append(ids, id)
		for _, c := range n.Children {
			walk(c, SectionID(id, c.Name))
		}
	}
	walk(t.Root, RootSectionID)
	return ids
}

// Namespace scopes persisted section state to one report, so two reports
// opened from the same origin do not share open/closed flags.
func Namespace(t *tree.Tree) string {
	h := xxhash.New()
	_, _ = h.WriteString(t.Prefix)
	for _, c := range t.Root.Children {
		_, _ = h.WriteString("\x00" + c.Name)
	}
	for _, f := range t.Root.Files {
		_, _ = h.WriteString("\x00" + f.Path)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// StorageKey is the browser storage key holding a section's state.
func StorageKey(namespace, id string) string {
	return strings.Join([]string{"open", namespace, id}, ":")
}

// SectionState tracks which report sections are open. Unknown sections
// take the default, which starts as open. Safe for concurrent use.
type SectionState struct {
	mu   sync.RWMutex
	open map[string]bool
	def  bool
}

// NewSectionState returns a state where every section is open.
func NewSectionState() *SectionState {
	return &SectionState{open: make(map[string]bool), def: true}
}

// IsOpen reports whether section id is open.
func (s *SectionState) IsOpen(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.open[id]; ok {
		return v
	}
	return s.def
}

// Set opens or closes one section.
func (s *SectionState) Set(id string, open bool) {
	s.mu.Lock()
	s.open[id] = open
	s.mu.Unlock()
}

// Toggle flips a section and returns its new state.
func (s *SectionState) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.open[id]
	if !ok {
		v = s.def
	}
	s.open[id] = !v
	return !v
}

// SetAll forces every section, known or not, into the same state.
func (s *SectionState) SetAll(open bool) {
	s.mu.Lock()
	s.open = make(map[string]bool)
	s.def = open
	s.mu.Unlock()
}
