package models

// ProjectID names a project across the category map and the registry.
// Equality is exact: case and whitespace are significant.
type ProjectID string

func (id ProjectID) String() string {
	return string(id)
}

// RegistryRecord is a project exactly as the registry described it. Nothing
// here is validated yet; see normalize.Normalize.
type RegistryRecord struct {
	ID          string
	Name        string
	Description string
	HomepageURL string
	LogoURL     string
	RepoURLs    []string
	Maturity    string

	AcceptedDate   string
	SandboxDate    string
	IncubatingDate string
	GraduatedDate  string
	ArchivedDate   string

	// AuditCount is nil when the registry omitted the field.
	AuditCount    *int
	LastAuditDate string
}

// Lifecycle holds the optional dates a project entered each maturity stage.
type Lifecycle struct {
	Accepted   *Date
	Sandbox    *Date
	Incubating *Date
	Graduated  *Date
	Archived   *Date
}

// Project is a validated registry record.
//
// Invariants:
//   - ID is non-blank
//   - Name is non-empty
//   - Maturity is one of the known stages
//   - AuditCount is non-negative
type Project struct {
	ID              ProjectID
	Name            string
	Description     string
	HomepageURL     string
	LogoURL         string
	RepoURL         string
	AdditionalRepos []string
	Maturity        Maturity
	Lifecycle       Lifecycle
	AuditCount      int
	LastAudit       *Date
}

// Entry is a project placed into the landscape.
type Entry struct {
	Project
	Category    string
	Subcategory string
	// Unmapped marks entries routed to the fallback bucket.
	Unmapped bool
}
