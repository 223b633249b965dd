// Package emit renders merged entries as a landscape2 data file.
//
// Output is deterministic: the same entries and layout always produce the
// same bytes, whatever order the registry returned projects in. The file is
// replaced atomically so a failed run never leaves a half-written document.
package emit

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"landscape/internal/landscape/merge"
	"landscape/internal/landscape/models"
	dErrors "landscape/pkg/domain-errors"
)

const (
	header = "# Code generated by landscape. DO NOT EDIT.\n"

	// PlaceholderLogo is used when a project has no logo.
	PlaceholderLogo = "placeholder.svg"

	DefaultSubcategory = "General"
)

// Layout carries the per-run inputs that shape the document besides the
// entries themselves.
type Layout struct {
	// Categories gives the curated category and subcategory order. May be nil.
	Categories *models.CategoryMap
	// Logos maps projects to downloaded logo file names, overriding LogoURL.
	Logos map[models.ProjectID]string
}

// Emitter writes landscape documents.
type Emitter struct {
	defaultSubcategory string
	fallbackCategory   string
}

type Option func(e *Emitter)

// WithDefaultSubcategory names the group for entries without a subcategory.
func WithDefaultSubcategory(name string) Option {
	return func(e *Emitter) {
		if name != "" {
			e.defaultSubcategory = name
		}
	}
}

// WithFallbackCategory names the unmapped bucket, which is rendered last.
func WithFallbackCategory(name string) Option {
	return func(e *Emitter) {
		if name != "" {
			e.fallbackCategory = name
		}
	}
}

func New(opts ...Option) *Emitter {
	e := &Emitter{
		defaultSubcategory: DefaultSubcategory,
		fallbackCategory:   merge.DefaultFallbackCategory,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit renders entries and atomically replaces outputPath.
func (e *Emitter) Emit(entries []models.Entry, outputPath string, layout Layout) error {
	data, err := e.Render(entries, layout)
	if err != nil {
		return err
	}
	return WriteFileAtomic(outputPath, data)
}

// Render returns the encoded document.
func (e *Emitter) Render(entries []models.Entry, layout Layout) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(e.Build(entries, layout)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode landscape document")
	}
	if err := enc.Close(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode landscape document")
	}
	return buf.Bytes(), nil
}

// Build groups entries into categories and subcategories. Empty groups are
// left out.
func (e *Emitter) Build(entries []models.Entry, layout Layout) *Document {
	grouped := make(map[string]map[string][]models.Entry)
	for _, entry := range entries {
		sub := entry.Subcategory
		if sub == "" {
			sub = e.defaultSubcategory
		}
		if grouped[entry.Category] == nil {
			grouped[entry.Category] = make(map[string][]models.Entry)
		}
		grouped[entry.Category][sub] = append(grouped[entry.Category][sub], entry)
	}

	var curated []string
	if layout.Categories != nil {
		curated = layout.Categories.Categories()
	}
	doc := &Document{Categories: []Category{}}
	for _, catName := range orderNames(curated, grouped, e.fallbackCategory) {
		var curatedSubs []string
		if layout.Categories != nil {
			curatedSubs = layout.Categories.Subcategories(catName)
		}
		cat := Category{Name: catName}
		for _, subName := range orderNames(curatedSubs, grouped[catName], "") {
			items := grouped[catName][subName]
			merge.SortEntries(items)
			sub := Subcategory{Name: subName, Items: make([]Item, 0, len(items))}
			for _, entry := range items {
				sub.Items = append(sub.Items, toItem(entry, layout.Logos))
			}
			cat.Subcategories = append(cat.Subcategories, sub)
		}
		doc.Categories = append(doc.Categories, cat)
	}
	return doc
}

// orderNames returns the keys of present: curated ones first in curated
// order, the rest sorted by name, and last (if present) at the end.
func orderNames[V any](curated []string, present map[string]V, last string) []string {
	out := make([]string, 0, len(present))
	used := make(map[string]bool, len(present))
	for _, name := range curated {
		if _, ok := present[name]; ok && !used[name] && name != last {
			out = append(out, name)
			used[name] = true
		}
	}
	var rest []string
	for name := range present {
		if !used[name] && name != last {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	out = append(out, rest...)
	if _, ok := present[last]; ok && last != "" {
		out = append(out, last)
	}
	return out
}

func toItem(entry models.Entry, logos map[models.ProjectID]string) Item {
	p := entry.Project
	item := Item{
		Name:        p.Name,
		Description: p.Description,
		HomepageURL: p.HomepageURL,
		Logo:        logoFor(p, logos),
		Project:     p.Maturity.String(),
		RepoURL:     p.RepoURL,
		Extra: Extra{
			ProjectID:           string(p.ID),
			Accepted:            models.StringPtr(p.Lifecycle.Accepted),
			Sandbox:             models.StringPtr(p.Lifecycle.Sandbox),
			Incubating:          models.StringPtr(p.Lifecycle.Incubating),
			Graduated:           models.StringPtr(p.Lifecycle.Graduated),
			Archived:            models.StringPtr(p.Lifecycle.Archived),
			SecurityAuditsCount: p.AuditCount,
			LastSecurityAudit:   models.StringPtr(p.LastAudit),
		},
	}
	for _, repo := range p.AdditionalRepos {
		item.AdditionalRepos = append(item.AdditionalRepos, Repo{RepoURL: repo})
	}
	return item
}

func logoFor(p models.Project, logos map[models.ProjectID]string) string {
	if name, ok := logos[p.ID]; ok && name != "" {
		return name
	}
	if p.LogoURL != "" {
		return p.LogoURL
	}
	return PlaceholderLogo
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place. On any failure path is left as it was.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeWrite, fmt.Sprintf("create temporary file for %s", path))
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return dErrors.Wrap(err, dErrors.CodeWrite, fmt.Sprintf("write %s", tmp.Name()))
	}
	if err = tmp.Sync(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeWrite, fmt.Sprintf("sync %s", tmp.Name()))
	}
	if err = tmp.Chmod(0o644); err != nil {
		return dErrors.Wrap(err, dErrors.CodeWrite, fmt.Sprintf("chmod %s", tmp.Name()))
	}
	if err = tmp.Close(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeWrite, fmt.Sprintf("close %s", tmp.Name()))
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return dErrors.Wrap(err, dErrors.CodeWrite, fmt.Sprintf("replace %s", path))
	}
	return nil
}
