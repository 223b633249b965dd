// Package normalize turns raw registry records into validated projects.
//
// A record that fails validation halts the run: an unknown maturity or an
// unparsable date usually means the registry changed its schema, and
// dropping the project silently would hide that.
package normalize

import (
	"fmt"
	"net/url"
	"strings"

	"landscape/internal/landscape/models"
	dErrors "landscape/pkg/domain-errors"
	pstrings "landscape/pkg/platform/strings"
)

// Normalize validates raw and fills optional fields with their defaults.
// It has no side effects.
func Normalize(raw models.RegistryRecord) (models.Project, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return models.Project{}, invalid(raw.ID, "identifier is blank")
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return models.Project{}, invalid(raw.ID, "name is empty")
	}

	maturity, ok := models.ParseMaturity(raw.Maturity)
	if !ok {
		return models.Project{}, invalid(raw.ID, fmt.Sprintf("unknown maturity %q", raw.Maturity))
	}

	homepage := strings.TrimSpace(raw.HomepageURL)
	if homepage != "" {
		if err := checkURL(homepage); err != nil {
			return models.Project{}, invalid(raw.ID, fmt.Sprintf("homepage %q: %v", homepage, err))
		}
	}

	lifecycle, err := parseLifecycle(raw)
	if err != nil {
		return models.Project{}, invalid(raw.ID, err.Error())
	}

	auditCount := 0
	if raw.AuditCount != nil {
		if *raw.AuditCount < 0 {
			return models.Project{}, invalid(raw.ID, fmt.Sprintf("negative security audit count %d", *raw.AuditCount))
		}
		auditCount = *raw.AuditCount
	}
	lastAudit, err := optionalDate("last security audit", raw.LastAuditDate)
	if err != nil {
		return models.Project{}, invalid(raw.ID, err.Error())
	}

	p := models.Project{
		ID:          models.ProjectID(raw.ID),
		Name:        name,
		Description: strings.TrimSpace(raw.Description),
		HomepageURL: homepage,
		LogoURL:     strings.TrimSpace(raw.LogoURL),
		Maturity:    maturity,
		Lifecycle:   lifecycle,
		AuditCount:  auditCount,
		LastAudit:   lastAudit,
	}
	if repos := pstrings.DedupeAndTrim(raw.RepoURLs); len(repos) > 0 {
		p.RepoURL = repos[0]
		if len(repos) > 1 {
			p.AdditionalRepos = repos[1:]
		}
	}
	return p, nil
}

// NormalizeAll normalizes records in order and stops at the first invalid one.
func NormalizeAll(records []models.RegistryRecord) ([]models.Project, error) {
	projects := make([]models.Project, 0, len(records))
	for _, r := range records {
		p, err := Normalize(r)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func parseLifecycle(raw models.RegistryRecord) (models.Lifecycle, error) {
	var (
		l   models.Lifecycle
		err error
	)
	fields := []struct {
		label string
		value string
		dst   **models.Date
	}{
		{"accepted", raw.AcceptedDate, &l.Accepted},
		{"sandbox", raw.SandboxDate, &l.Sandbox},
		{"incubating", raw.IncubatingDate, &l.Incubating},
		{"graduated", raw.GraduatedDate, &l.Graduated},
		{"archived", raw.ArchivedDate, &l.Archived},
	}
	for _, f := range fields {
		if *f.dst, err = optionalDate(f.label, f.value); err != nil {
			return models.Lifecycle{}, err
		}
	}
	return l, nil
}

func optionalDate(label, raw string) (*models.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s date: %w", label, err)
	}
	return &d, nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("not an absolute http(s) URL")
	}
	return nil
}

func invalid(id, reason string) error {
	return dErrors.Newf(dErrors.CodeInvalidRecord, "registry record %q: %s", id, reason)
}
