package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"landscape/internal/landscape/emit"
	"landscape/internal/registry/mockserver"
	dErrors "landscape/pkg/domain-errors"
	"landscape/pkg/testutil"
)

const singleProjectMap = `
projects:
  proj-a: {category: Tools}
`

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func startRegistry(t *testing.T, projects []testutil.RegistryProject, opts ...mockserver.Option) (*mockserver.Server, string) {
	t.Helper()
	mock := mockserver.New(testutil.RawProjects(t, projects...), append(opts, mockserver.WithLogger(testutil.DiscardLogger()))...)
	srv := httptest.NewServer(mock.Router())
	t.Cleanup(srv.Close)
	return mock, srv.URL + mockserver.ProjectsPath
}

func readDocument(t *testing.T, path string) emit.Document {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc emit.Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	return doc
}

func fastRetries(registryURL string) []string {
	return []string{"--registry-url", registryURL, "--retries", "2", "--retry-initial", "1ms", "--retry-max", "2ms", "--log-level", "error"}
}

func TestGenerateSingleProject(t *testing.T) {
	testutil.Given(t, "a map with proj-a under Tools and a registry returning it", func(t *testing.T) {
		dir := t.TempDir()
		categories := testutil.WriteFile(t, dir, "categories.yml", singleProjectMap)
		output := filepath.Join(dir, "data.yml")
		_, registryURL := startRegistry(t, []testutil.RegistryProject{testutil.Project("proj-a", "Proj A", "Incubating")})

		testutil.When(t, "generating", func(t *testing.T) {
			args := append([]string{"generate", "--categories", categories, "--output", output}, fastRetries(registryURL)...)
			res := runCLI(t, args...)
			require.Equal(t, exitOK, res.code, res.stderr)

			testutil.Then(t, "the document holds exactly that project", func(t *testing.T) {
				doc := readDocument(t, output)
				require.Len(t, doc.Categories, 1)
				assert.Equal(t, "Tools", doc.Categories[0].Name)
				require.Len(t, doc.Categories[0].Subcategories, 1)
				items := doc.Categories[0].Subcategories[0].Items
				require.Len(t, items, 1)
				assert.Equal(t, "Proj A", items[0].Name)
				assert.Equal(t, "Incubating", items[0].Project)
				assert.Equal(t, 0, items[0].Extra.SecurityAuditsCount)
				assert.Contains(t, res.stdout, "wrote 1 projects")
			})
		})
	})
}

func TestGenerateInvalidMaturity(t *testing.T) {
	testutil.Given(t, "a registry record with maturity Mature", func(t *testing.T) {
		dir := t.TempDir()
		categories := testutil.WriteFile(t, dir, "categories.yml", singleProjectMap)
		_, registryURL := startRegistry(t, []testutil.RegistryProject{testutil.Project("proj-a", "Proj A", "Mature")})

		testutil.When(t, "no output exists yet", func(t *testing.T) {
			output := filepath.Join(dir, "fresh.yml")
			res := runCLI(t, append([]string{"--categories", categories, "--output", output}, fastRetries(registryURL)...)...)

			testutil.Then(t, "the run fails naming the value and the project, writing nothing", func(t *testing.T) {
				assert.Equal(t, exitInvalidRecord, res.code)
				assert.Contains(t, res.stderr, string(dErrors.CodeInvalidRecord))
				assert.Contains(t, res.stderr, "Mature")
				assert.Contains(t, res.stderr, "proj-a")
				assert.NoFileExists(t, output)
			})
		})

		testutil.When(t, "a previous document exists", func(t *testing.T) {
			output := testutil.WriteFile(t, dir, "data.yml", "previous")
			res := runCLI(t, append([]string{"--categories", categories, "--output", output}, fastRetries(registryURL)...)...)

			testutil.Then(t, "the previous document is untouched", func(t *testing.T) {
				assert.Equal(t, exitInvalidRecord, res.code)
				data, err := os.ReadFile(output)
				require.NoError(t, err)
				assert.Equal(t, "previous", string(data))
			})
		})
	})
}

func TestGenerateRegistryDown(t *testing.T) {
	testutil.Given(t, "a registry failing every request", func(t *testing.T) {
		dir := t.TempDir()
		categories := testutil.WriteFile(t, dir, "categories.yml", singleProjectMap)
		output := testutil.WriteFile(t, dir, "data.yml", "previous")
		mock, registryURL := startRegistry(t, []testutil.RegistryProject{testutil.Project("proj-a", "Proj A", "Incubating")},
			mockserver.WithFailFirst(1000))

		testutil.When(t, "generating with two retries", func(t *testing.T) {
			res := runCLI(t, append([]string{"--categories", categories, "--output", output}, fastRetries(registryURL)...)...)

			testutil.Then(t, "the run fails as unavailable after the retry budget", func(t *testing.T) {
				assert.Equal(t, exitRegistryUnavailable, res.code)
				assert.Contains(t, res.stderr, string(dErrors.CodeRegistryUnavailable))
				assert.Equal(t, 3, mock.Requests())

				data, err := os.ReadFile(output)
				require.NoError(t, err)
				assert.Equal(t, "previous", string(data))
			})
		})
	})
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	categories := testutil.WriteFile(t, dir, "categories.yml", singleProjectMap)
	output := filepath.Join(dir, "data.yml")

	t.Run("missing category map flag", func(t *testing.T) {
		res := runCLI(t, "--output", output)
		assert.Equal(t, exitConfig, res.code)
		assert.Contains(t, res.stderr, "category map path is required")
	})

	t.Run("unknown flag", func(t *testing.T) {
		assert.Equal(t, exitConfig, runCLI(t, "--no-such-flag").code)
	})

	t.Run("unexpected argument", func(t *testing.T) {
		assert.Equal(t, exitConfig, runCLI(t, "generate", "extra").code)
	})

	t.Run("missing category map file aborts before any request", func(t *testing.T) {
		mock, registryURL := startRegistry(t, nil)
		args := append([]string{"--categories", filepath.Join(dir, "nope.yml"), "--output", output}, fastRetries(registryURL)...)
		assert.Equal(t, exitConfig, runCLI(t, args...).code)
		assert.Equal(t, 0, mock.Requests())
	})

	t.Run("registry rejects the request", func(t *testing.T) {
		_, registryURL := startRegistry(t, nil, mockserver.WithStatus(http.StatusForbidden))
		args := append([]string{"--categories", categories, "--output", output}, fastRetries(registryURL)...)
		res := runCLI(t, args...)
		assert.Equal(t, exitRegistryResponse, res.code)
		assert.Contains(t, res.stderr, "403")
	})

	t.Run("reject policy with an unmapped project", func(t *testing.T) {
		_, registryURL := startRegistry(t, []testutil.RegistryProject{
			testutil.Project("proj-a", "Proj A", "Incubating"),
			testutil.Project("proj-z", "Proj Z", "Sandbox"),
		})
		args := append([]string{"--categories", categories, "--output", output, "--unmapped", "reject"}, fastRetries(registryURL)...)
		res := runCLI(t, args...)
		assert.Equal(t, exitUnmappedProject, res.code)
		assert.Contains(t, res.stderr, "proj-z")
	})

	t.Run("output directory missing", func(t *testing.T) {
		_, registryURL := startRegistry(t, []testutil.RegistryProject{testutil.Project("proj-a", "Proj A", "Incubating")})
		args := append([]string{"--categories", categories, "--output", filepath.Join(dir, "missing", "data.yml")}, fastRetries(registryURL)...)
		assert.Equal(t, exitWrite, runCLI(t, args...).code)
	})
}

func TestGenerateFromLocalExport(t *testing.T) {
	dir := t.TempDir()
	categories := testutil.WriteFile(t, dir, "categories.yml", singleProjectMap)
	input := testutil.WriteFile(t, dir, "projects.json",
		`[{"id":"proj-a","name":"Proj A","state":"Incubating"},{"id":"proj-b","name":"Proj B","state":"Sandbox"}]`)
	output := filepath.Join(dir, "data.yml")
	metricsFile := filepath.Join(dir, "landscape.prom")

	res := runCLI(t, "--categories", categories, "--output", output, "--input", input,
		"--fallback-category", "Other", "--metrics-file", metricsFile, "--log-format", "json", "--log-level", "warn")
	require.Equal(t, exitOK, res.code, res.stderr)

	doc := readDocument(t, output)
	require.Len(t, doc.Categories, 2)
	assert.Equal(t, "Tools", doc.Categories[0].Name)
	assert.Equal(t, "Other", doc.Categories[1].Name)
	assert.Equal(t, "Proj B", doc.Categories[1].Subcategories[0].Items[0].Name)
	assert.Contains(t, res.stderr, `"project_id":"proj-b"`)

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "landscape_unmapped_projects 1")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitInternal, exitCode(assert.AnError))
	assert.Equal(t, exitWrite, exitCode(dErrors.Wrap(assert.AnError, dErrors.CodeWrite, "write")))
}
