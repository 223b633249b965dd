package merge

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"landscape/internal/landscape/models"
	dErrors "landscape/pkg/domain-errors"
)

type MergeSuite struct {
	suite.Suite
	categories *models.CategoryMap
}

func TestMergeSuite(t *testing.T) {
	suite.Run(t, new(MergeSuite))
}

func (s *MergeSuite) SetupTest() {
	s.categories = models.NewCategoryMap()
	s.Require().NoError(s.categories.Add(models.CategoryEntry{ProjectID: "proj-c", Category: "Tools", Subcategory: "Build"}))
	s.Require().NoError(s.categories.Add(models.CategoryEntry{ProjectID: "proj-a", Category: "Tools"}))
	s.Require().NoError(s.categories.Add(models.CategoryEntry{ProjectID: "proj-b", Category: "Runtime", Subcategory: "Middleware"}))
}

func project(id string) models.Project {
	return models.Project{ID: models.ProjectID(id), Name: id, Maturity: models.MaturitySandbox}
}

func ids(entries []models.Entry) []models.ProjectID {
	out := make([]models.ProjectID, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func (s *MergeSuite) TestAllMapped() {
	s.Run("every project carries its mapping", func() {
		result, err := Merge([]models.Project{project("proj-b"), project("proj-c"), project("proj-a")}, s.categories, Options{})
		s.Require().NoError(err)

		s.Require().Len(result.Entries, 3)
		s.Equal([]models.ProjectID{"proj-a", "proj-b", "proj-c"}, ids(result.Entries))
		s.Equal("Tools", result.Entries[0].Category)
		s.Empty(result.Entries[0].Subcategory)
		s.Equal("Runtime", result.Entries[1].Category)
		s.Equal("Middleware", result.Entries[1].Subcategory)
		s.Equal("Build", result.Entries[2].Subcategory)
		s.Empty(result.Unmapped)
		s.Empty(result.Stale)
		for _, e := range result.Entries {
			s.False(e.Unmapped)
			s.NotEmpty(e.Category)
		}
	})

	s.Run("ordering ignores input order", func() {
		first, err := Merge([]models.Project{project("proj-c"), project("proj-a"), project("proj-b")}, s.categories, Options{})
		s.Require().NoError(err)
		second, err := Merge([]models.Project{project("proj-a"), project("proj-b"), project("proj-c")}, s.categories, Options{})
		s.Require().NoError(err)
		s.Equal(first.Entries, second.Entries)
	})
}

func (s *MergeSuite) TestUnmapped() {
	s.Run("bucket policy tags the fallback category", func() {
		result, err := Merge([]models.Project{project("proj-a"), project("zeta"), project("alpha")}, s.categories, Options{Policy: PolicyBucket})
		s.Require().NoError(err)

		s.Len(result.Entries, 3)
		s.Equal([]models.ProjectID{"alpha", "zeta"}, result.Unmapped)
		for _, e := range result.Entries {
			if e.ID == "alpha" || e.ID == "zeta" {
				s.True(e.Unmapped)
				s.Equal(DefaultFallbackCategory, e.Category)
				s.Equal(DefaultFallbackSubcategory, e.Subcategory)
			}
		}
	})

	s.Run("custom bucket names", func() {
		result, err := Merge([]models.Project{project("other")}, s.categories, Options{FallbackCategory: "Other", FallbackSubcategory: "Pending"})
		s.Require().NoError(err)
		s.Equal("Other", result.Entries[0].Category)
		s.Equal("Pending", result.Entries[0].Subcategory)
	})

	s.Run("reject policy fails naming every project", func() {
		result, err := Merge([]models.Project{project("zeta"), project("proj-a"), project("alpha")}, s.categories, Options{Policy: PolicyReject})
		s.Nil(result)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnmappedProject))
		s.Contains(err.Error(), `"alpha", "zeta"`)
	})
}

func (s *MergeSuite) TestStaleMappings() {
	result, err := Merge([]models.Project{project("proj-b")}, s.categories, Options{})
	s.Require().NoError(err)
	s.Equal([]models.ProjectID{"proj-a", "proj-c"}, result.Stale)
}

func (s *MergeSuite) TestDuplicateRegistryProject() {
	_, err := Merge([]models.Project{project("proj-a"), project("proj-a")}, s.categories, Options{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidRecord))
	s.Contains(err.Error(), `"proj-a"`)
}

func (s *MergeSuite) TestParsePolicy() {
	p, err := ParsePolicy(" Reject ")
	s.NoError(err)
	s.Equal(PolicyReject, p)

	p, err = ParsePolicy("bucket")
	s.NoError(err)
	s.Equal(PolicyBucket, p)

	_, err = ParsePolicy("drop")
	s.Error(err)
}

func (s *MergeSuite) TestSortEntriesBreaksTiesByCategory() {
	entries := []models.Entry{
		{Project: project("a"), Category: "Zeta"},
		{Project: project("a"), Category: "Alpha"},
		{Project: project("0"), Category: "Mid"},
	}
	SortEntries(entries)
	s.Equal("0", string(entries[0].ID))
	s.Equal("Alpha", entries[1].Category)
	s.Equal("Zeta", entries[2].Category)
}
