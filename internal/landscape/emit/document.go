package emit

// Document is the landscape2 data file.
type Document struct {
	Categories []Category `yaml:"categories"`
}

type Category struct {
	Name          string        `yaml:"name"`
	Subcategories []Subcategory `yaml:"subcategories"`
}

type Subcategory struct {
	Name  string `yaml:"name"`
	Items []Item `yaml:"items"`
}

// Item is one project card. Field order here is the key order in the file.
type Item struct {
	Name            string `yaml:"name"`
	Description     string `yaml:"description,omitempty"`
	HomepageURL     string `yaml:"homepage_url"`
	Logo            string `yaml:"logo"`
	Project         string `yaml:"project"`
	RepoURL         string `yaml:"repo_url,omitempty"`
	AdditionalRepos []Repo `yaml:"additional_repos,omitempty"`
	Extra           Extra  `yaml:"extra"`
}

type Repo struct {
	RepoURL string `yaml:"repo_url"`
}

// Extra carries registry metadata the generator shows on the project page.
type Extra struct {
	ProjectID           string `yaml:"project_id"`
	Accepted            string `yaml:"accepted,omitempty"`
	Sandbox             string `yaml:"sandbox,omitempty"`
	Incubating          string `yaml:"incubating,omitempty"`
	Graduated           string `yaml:"graduated,omitempty"`
	Archived            string `yaml:"archived,omitempty"`
	SecurityAuditsCount int    `yaml:"security_audits_count"`
	LastSecurityAudit   string `yaml:"last_security_audit,omitempty"`
}
