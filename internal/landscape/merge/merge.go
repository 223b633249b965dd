// Package merge joins validated registry projects with the curated category
// map.
package merge

import (
	"fmt"
	"sort"
	"strings"

	"landscape/internal/landscape/models"
	dErrors "landscape/pkg/domain-errors"
)

// Policy decides what happens to a registry project with no mapping entry.
type Policy string

const (
	// PolicyBucket places unmapped projects into the fallback category.
	PolicyBucket Policy = "bucket"
	// PolicyReject fails the run when any project is unmapped.
	PolicyReject Policy = "reject"
)

const (
	DefaultFallbackCategory    = "Unmapped"
	DefaultFallbackSubcategory = "Misc"
)

// ParsePolicy validates a policy name from configuration.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyBucket, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown unmapped policy %q (want %q or %q)", s, PolicyBucket, PolicyReject)
	}
}

// Options configures Merge. Zero values fall back to the bucket policy and
// the Unmapped / Misc bucket.
type Options struct {
	Policy              Policy
	FallbackCategory    string
	FallbackSubcategory string
}

func (o Options) withDefaults() Options {
	if o.Policy == "" {
		o.Policy = PolicyBucket
	}
	if o.FallbackCategory == "" {
		o.FallbackCategory = DefaultFallbackCategory
	}
	if o.FallbackSubcategory == "" {
		o.FallbackSubcategory = DefaultFallbackSubcategory
	}
	return o
}

// Result is the outcome of a merge.
type Result struct {
	// Entries holds one entry per project, sorted by identifier then
	// category name.
	Entries []models.Entry
	// Unmapped lists projects that had no mapping entry, sorted.
	Unmapped []models.ProjectID
	// Stale lists mapping entries whose project the registry did not return,
	// sorted.
	Stale []models.ProjectID
}

// Merge attaches a category to every project. Projects are never dropped:
// an unmapped project either lands in the fallback bucket or fails the
// merge, depending on opts.Policy.
func Merge(projects []models.Project, categories *models.CategoryMap, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	seen := make(map[models.ProjectID]struct{}, len(projects))
	result := &Result{Entries: make([]models.Entry, 0, len(projects))}

	for _, p := range projects {
		if _, dup := seen[p.ID]; dup {
			return nil, dErrors.Newf(dErrors.CodeInvalidRecord, "registry returned project %q more than once", p.ID)
		}
		seen[p.ID] = struct{}{}

		mapping, ok := categories.Lookup(p.ID)
		if !ok {
			result.Unmapped = append(result.Unmapped, p.ID)
			result.Entries = append(result.Entries, models.Entry{
				Project:     p,
				Category:    opts.FallbackCategory,
				Subcategory: opts.FallbackSubcategory,
				Unmapped:    true,
			})
			continue
		}
		result.Entries = append(result.Entries, models.Entry{
			Project:     p,
			Category:    mapping.Category,
			Subcategory: mapping.Subcategory,
		})
	}

	sortIDs(result.Unmapped)
	if opts.Policy == PolicyReject && len(result.Unmapped) > 0 {
		return nil, dErrors.Newf(dErrors.CodeUnmappedProject,
			"%d registry project(s) have no category mapping: %s", len(result.Unmapped), joinIDs(result.Unmapped))
	}

	for _, id := range categories.IDs() {
		if _, ok := seen[id]; !ok {
			result.Stale = append(result.Stale, id)
		}
	}
	sortIDs(result.Stale)

	SortEntries(result.Entries)
	return result, nil
}

// SortEntries orders entries by identifier, ties broken by category name.
func SortEntries(entries []models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ID != entries[j].ID {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Category < entries[j].Category
	})
}

func sortIDs(ids []models.ProjectID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func joinIDs(ids []models.ProjectID) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	return strings.Join(quoted, ", ")
}
