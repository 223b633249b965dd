package registry

import (
	"bytes"
	"encoding/json"
	"strings"

	"landscape/internal/landscape/models"
	pstrings "landscape/pkg/platform/strings"
)

// projectPayload is one element of a registry page. Fields the generator does
// not use are ignored by encoding/json.
type projectPayload struct {
	ProjectID   string          `json:"project_id"`
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	Summary     string          `json:"summary"`
	URL         string          `json:"url"`
	WebsiteURL  string          `json:"website_url"`
	Logo        string          `json:"logo"`
	State       string          `json:"state"`
	GithubRepos []repoPayload   `json:"github_repos"`

	AcceptedDate   string `json:"accepted_date"`
	SandboxDate    string `json:"sandbox_date"`
	IncubatingDate string `json:"incubating_date"`
	GraduatedDate  string `json:"graduated_date"`
	ArchivedDate   string `json:"archived_date"`

	SecurityAuditCount    *int   `json:"security_audit_count"`
	LastSecurityAuditDate string `json:"last_security_audit_date"`
}

type repoPayload struct {
	URL string `json:"url"`
}

// decodePage parses a page body. A JSON null is an empty page.
func decodePage(body []byte) ([]models.RegistryRecord, error) {
	var payloads []projectPayload
	if err := json.Unmarshal(body, &payloads); err != nil {
		return nil, err
	}
	records := make([]models.RegistryRecord, 0, len(payloads))
	for _, p := range payloads {
		records = append(records, p.toRecord())
	}
	return records, nil
}

func (p projectPayload) toRecord() models.RegistryRecord {
	repos := make([]string, 0, len(p.GithubRepos))
	for _, r := range p.GithubRepos {
		repos = append(repos, r.URL)
	}
	return models.RegistryRecord{
		ID:             firstID(p.ProjectID, rawID(p.ID)),
		Name:           p.Name,
		Description:    strings.TrimSpace(p.Summary),
		HomepageURL:    pstrings.FirstNonEmpty(p.WebsiteURL, p.URL),
		LogoURL:        strings.TrimSpace(p.Logo),
		RepoURLs:       repos,
		Maturity:       p.State,
		AcceptedDate:   p.AcceptedDate,
		SandboxDate:    p.SandboxDate,
		IncubatingDate: p.IncubatingDate,
		GraduatedDate:  p.GraduatedDate,
		ArchivedDate:   p.ArchivedDate,
		AuditCount:     p.SecurityAuditCount,
		LastAuditDate:  p.LastSecurityAuditDate,
	}
}

// firstID picks project_id over id, keeping the value verbatim so it matches
// category map keys exactly.
func firstID(ids ...string) string {
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			return id
		}
	}
	return ""
}

// rawID accepts both string and numeric identifiers.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
