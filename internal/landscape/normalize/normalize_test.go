package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landscape/internal/landscape/models"
	dErrors "landscape/pkg/domain-errors"
)

func intPtr(v int) *int { return &v }

func TestNormalize(t *testing.T) {
	t.Run("minimal record gets defaults", func(t *testing.T) {
		p, err := Normalize(models.RegistryRecord{ID: "proj-a", Name: "Proj A", Maturity: "Incubating"})
		require.NoError(t, err)

		assert.Equal(t, models.ProjectID("proj-a"), p.ID)
		assert.Equal(t, "Proj A", p.Name)
		assert.Equal(t, models.MaturityIncubating, p.Maturity)
		assert.Equal(t, 0, p.AuditCount)
		assert.Nil(t, p.LastAudit)
		assert.Equal(t, models.Lifecycle{}, p.Lifecycle, "absent dates stay absent")
		assert.Empty(t, p.RepoURL)
		assert.Nil(t, p.AdditionalRepos)
	})

	t.Run("full record is trimmed and canonicalized", func(t *testing.T) {
		p, err := Normalize(models.RegistryRecord{
			ID:             "automotive.kuksa",
			Name:           "  Eclipse Kuksa ",
			Description:    " Vehicle data broker\n",
			HomepageURL:    " https://projects.eclipse.org/projects/automotive.kuksa ",
			LogoURL:        "https://example.org/kuksa.svg",
			RepoURLs:       []string{" https://github.com/eclipse/kuksa", "https://github.com/eclipse/kuksa", "https://github.com/eclipse/kuksa-python", ""},
			Maturity:       " graduated ",
			AcceptedDate:   "2019-03-01",
			IncubatingDate: "2019-03-01T12:00:00Z",
			GraduatedDate:  "2022-05-10 08:00:00",
			AuditCount:     intPtr(2),
			LastAuditDate:  "2024-05-01",
		})
		require.NoError(t, err)

		assert.Equal(t, "Eclipse Kuksa", p.Name)
		assert.Equal(t, "Vehicle data broker", p.Description)
		assert.Equal(t, "https://projects.eclipse.org/projects/automotive.kuksa", p.HomepageURL)
		assert.Equal(t, models.MaturityGraduated, p.Maturity)
		assert.Equal(t, "https://github.com/eclipse/kuksa", p.RepoURL)
		assert.Equal(t, []string{"https://github.com/eclipse/kuksa-python"}, p.AdditionalRepos)
		assert.Equal(t, "2019-03-01", models.StringPtr(p.Lifecycle.Accepted))
		assert.Equal(t, "2019-03-01", models.StringPtr(p.Lifecycle.Incubating))
		assert.Equal(t, "2022-05-10", models.StringPtr(p.Lifecycle.Graduated))
		assert.Nil(t, p.Lifecycle.Sandbox)
		assert.Nil(t, p.Lifecycle.Archived)
		assert.Equal(t, 2, p.AuditCount)
		assert.Equal(t, "2024-05-01", models.StringPtr(p.LastAudit))
	})

	t.Run("identifier is kept verbatim", func(t *testing.T) {
		p, err := Normalize(models.RegistryRecord{ID: " Proj-A", Name: "x", Maturity: "sandbox"})
		require.NoError(t, err)
		assert.Equal(t, models.ProjectID(" Proj-A"), p.ID)
	})
}

func TestNormalizeRejects(t *testing.T) {
	valid := func() models.RegistryRecord {
		return models.RegistryRecord{ID: "proj-x", Name: "Proj X", Maturity: "Sandbox"}
	}

	tests := []struct {
		name    string
		mutate  func(r *models.RegistryRecord)
		message string
	}{
		{name: "unknown maturity", mutate: func(r *models.RegistryRecord) { r.Maturity = "Mature" }, message: `unknown maturity "Mature"`},
		{name: "missing maturity", mutate: func(r *models.RegistryRecord) { r.Maturity = "" }, message: `unknown maturity ""`},
		{name: "blank id", mutate: func(r *models.RegistryRecord) { r.ID = "  " }, message: "identifier is blank"},
		{name: "empty name", mutate: func(r *models.RegistryRecord) { r.Name = " " }, message: "name is empty"},
		{name: "bad lifecycle date", mutate: func(r *models.RegistryRecord) { r.ArchivedDate = "someday" }, message: "archived date"},
		{name: "bad audit date", mutate: func(r *models.RegistryRecord) { r.LastAuditDate = "13/13/2020" }, message: "last security audit date"},
		{name: "negative audit count", mutate: func(r *models.RegistryRecord) { r.AuditCount = intPtr(-1) }, message: "negative security audit count"},
		{name: "relative homepage", mutate: func(r *models.RegistryRecord) { r.HomepageURL = "/projects/x" }, message: "homepage"},
		{name: "non-http homepage", mutate: func(r *models.RegistryRecord) { r.HomepageURL = "ftp://example.org" }, message: "homepage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)

			_, err := Normalize(r)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidRecord))
			assert.Contains(t, err.Error(), tt.message)
			if r.ID == "proj-x" {
				assert.Contains(t, err.Error(), `"proj-x"`)
			}
		})
	}
}

func TestNormalizeAll(t *testing.T) {
	t.Run("preserves order", func(t *testing.T) {
		projects, err := NormalizeAll([]models.RegistryRecord{
			{ID: "b", Name: "B", Maturity: "sandbox"},
			{ID: "a", Name: "A", Maturity: "archived"},
		})
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, models.ProjectID("b"), projects[0].ID)
		assert.Equal(t, models.ProjectID("a"), projects[1].ID)
	})

	t.Run("stops at first invalid record", func(t *testing.T) {
		projects, err := NormalizeAll([]models.RegistryRecord{
			{ID: "a", Name: "A", Maturity: "sandbox"},
			{ID: "bad", Name: "Bad", Maturity: "Mature"},
		})
		assert.Nil(t, projects)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"bad"`)
		assert.Contains(t, err.Error(), `"Mature"`)
	})
}
