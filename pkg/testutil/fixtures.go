package testutil

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RegistryProject is a project object as the registry API returns it.
// Only the fields the generator reads are modelled.
type RegistryProject struct {
	ProjectID          string       `json:"project_id"`
	Name               string       `json:"name"`
	Summary            string       `json:"summary,omitempty"`
	URL                string       `json:"url,omitempty"`
	WebsiteURL         string       `json:"website_url,omitempty"`
	Logo               string       `json:"logo,omitempty"`
	State              string       `json:"state"`
	GithubRepos        []GithubRepo `json:"github_repos,omitempty"`
	AcceptedDate       string       `json:"accepted_date,omitempty"`
	IncubatingDate     string       `json:"incubating_date,omitempty"`
	SecurityAuditCount *int         `json:"security_audit_count,omitempty"`
}

type GithubRepo struct {
	URL string `json:"url"`
}

// Project returns a minimal valid registry project.
func Project(id, name, state string) RegistryProject {
	return RegistryProject{ProjectID: id, Name: name, State: state}
}

// RawProjects encodes projects for the mock registry.
func RawProjects(t *testing.T, projects ...RegistryProject) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(projects))
	for i, p := range projects {
		data, err := json.Marshal(p)
		require.NoError(t, err)
		out[i] = data
	}
	return out
}

// WriteFile writes content under dir and returns its path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// DiscardLogger drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
