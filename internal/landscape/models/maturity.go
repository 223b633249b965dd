package models

import "strings"

// Maturity is a project's lifecycle classification. Values carry the
// registry's own spelling.
type Maturity string

const (
	MaturitySandbox    Maturity = "Sandbox"
	MaturityIncubating Maturity = "Incubating"
	MaturityRegular    Maturity = "Regular"
	MaturityGraduated  Maturity = "Graduated"
	MaturityArchived   Maturity = "Archived"
)

var knownMaturities = map[string]Maturity{
	"sandbox":    MaturitySandbox,
	"incubating": MaturityIncubating,
	"regular":    MaturityRegular,
	"graduated":  MaturityGraduated,
	"archived":   MaturityArchived,
}

// ParseMaturity maps a registry state string onto the known enumeration.
// Matching ignores case and surrounding whitespace.
func ParseMaturity(raw string) (Maturity, bool) {
	m, ok := knownMaturities[strings.ToLower(strings.TrimSpace(raw))]
	return m, ok
}

func (m Maturity) IsValid() bool {
	known, ok := knownMaturities[strings.ToLower(string(m))]
	return ok && known == m
}

func (m Maturity) String() string {
	return string(m)
}
