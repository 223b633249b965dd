package models

import (
	"fmt"
	"strings"
)

// CategoryEntry assigns a project to a category and optional subcategory.
type CategoryEntry struct {
	ProjectID   ProjectID
	Category    string
	Subcategory string
}

// CategoryMap is the curated project assignment for one run. It is built
// once by the loader and only read afterwards.
//
// Invariants:
//   - every ProjectID appears at most once
//   - every entry has a non-empty category
type CategoryMap struct {
	entries       map[ProjectID]CategoryEntry
	ids           []ProjectID
	categories    []string
	subcategories map[string][]string
}

func NewCategoryMap() *CategoryMap {
	return &CategoryMap{
		entries:       make(map[ProjectID]CategoryEntry),
		subcategories: make(map[string][]string),
	}
}

// Add registers an entry. It fails on a blank identifier, an empty category
// or an identifier that is already mapped.
func (m *CategoryMap) Add(e CategoryEntry) error {
	if strings.TrimSpace(string(e.ProjectID)) == "" {
		return fmt.Errorf("blank project identifier in category %q", e.Category)
	}
	if strings.TrimSpace(e.Category) == "" {
		return fmt.Errorf("project %q has an empty category", e.ProjectID)
	}
	if prev, exists := m.entries[e.ProjectID]; exists {
		return fmt.Errorf("duplicate project %q: mapped to %s and %s", e.ProjectID, describe(prev), describe(e))
	}
	m.entries[e.ProjectID] = e
	m.ids = append(m.ids, e.ProjectID)
	m.DeclareCategory(e.Category, e.Subcategory)
	return nil
}

// DeclareCategory records category order without mapping a project, so that
// curated but still empty categories keep their position.
func (m *CategoryMap) DeclareCategory(category, subcategory string) {
	if _, seen := m.subcategories[category]; !seen {
		m.categories = append(m.categories, category)
		m.subcategories[category] = nil
	}
	if subcategory == "" {
		return
	}
	for _, s := range m.subcategories[category] {
		if s == subcategory {
			return
		}
	}
	m.subcategories[category] = append(m.subcategories[category], subcategory)
}

func (m *CategoryMap) Lookup(id ProjectID) (CategoryEntry, bool) {
	e, ok := m.entries[id]
	return e, ok
}

func (m *CategoryMap) Len() int {
	return len(m.entries)
}

// IDs returns mapped identifiers in document order.
func (m *CategoryMap) IDs() []ProjectID {
	return append([]ProjectID(nil), m.ids...)
}

// Categories returns category names in document order.
func (m *CategoryMap) Categories() []string {
	return append([]string(nil), m.categories...)
}

// Subcategories returns the subcategory names of category in document order.
func (m *CategoryMap) Subcategories(category string) []string {
	return append([]string(nil), m.subcategories[category]...)
}

func describe(e CategoryEntry) string {
	if e.Subcategory == "" {
		return fmt.Sprintf("%q", e.Category)
	}
	return fmt.Sprintf("%q / %q", e.Category, e.Subcategory)
}
