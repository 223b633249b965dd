// Package categorymap loads the curated project-to-category assignment.
package categorymap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"landscape/internal/landscape/models"
	dErrors "landscape/pkg/domain-errors"
)

// document mirrors the mapping file. Both sections are optional and may be
// combined; identifiers must be unique across the whole file.
type document struct {
	Categories []categoryDoc `yaml:"categories"`
	// Projects is kept as a node so the flat form preserves key order.
	Projects yaml.Node `yaml:"projects"`
}

type categoryDoc struct {
	Name          string           `yaml:"name"`
	Items         []string         `yaml:"items"`
	Subcategories []subcategoryDoc `yaml:"subcategories"`
}

type subcategoryDoc struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

type projectDoc struct {
	Category    string `yaml:"category"`
	Subcategory string `yaml:"subcategory"`
}

// Load reads and validates the category map at path. Every failure is a
// config_error naming the file.
func Load(path string) (*models.CategoryMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfig, fmt.Sprintf("read category map %s", path))
	}
	m, err := Parse(data)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfig, fmt.Sprintf("category map %s", path))
	}
	return m, nil
}

// Parse builds a CategoryMap from YAML. Unknown keys are rejected so typos
// in the curated file do not silently drop assignments.
func Parse(data []byte) (*models.CategoryMap, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty")
		}
		return nil, fmt.Errorf("parse: %w", err)
	}

	m := models.NewCategoryMap()
	for i, cat := range doc.Categories {
		if err := addCategory(m, i, cat); err != nil {
			return nil, err
		}
	}
	if err := addProjects(m, &doc.Projects); err != nil {
		return nil, err
	}
	return m, nil
}

func addCategory(m *models.CategoryMap, index int, cat categoryDoc) error {
	name := strings.TrimSpace(cat.Name)
	if name == "" {
		return fmt.Errorf("categories[%d]: name is required", index)
	}
	m.DeclareCategory(name, "")
	for _, item := range cat.Items {
		if err := m.Add(models.CategoryEntry{ProjectID: models.ProjectID(item), Category: name}); err != nil {
			return err
		}
	}
	for j, sub := range cat.Subcategories {
		subName := strings.TrimSpace(sub.Name)
		if subName == "" {
			return fmt.Errorf("categories[%d] %q: subcategories[%d]: name is required", index, name, j)
		}
		m.DeclareCategory(name, subName)
		for _, item := range sub.Items {
			entry := models.CategoryEntry{ProjectID: models.ProjectID(item), Category: name, Subcategory: subName}
			if err := m.Add(entry); err != nil {
				return err
			}
		}
	}
	return nil
}

func addProjects(m *models.CategoryMap, node *yaml.Node) error {
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: projects must be a mapping of identifier to category", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if err := checkProjectFields(key.Value, value); err != nil {
			return err
		}
		var p projectDoc
		if err := value.Decode(&p); err != nil {
			return fmt.Errorf("projects %q: %w", key.Value, err)
		}
		entry := models.CategoryEntry{
			ProjectID:   models.ProjectID(key.Value),
			Category:    strings.TrimSpace(p.Category),
			Subcategory: strings.TrimSpace(p.Subcategory),
		}
		if err := m.Add(entry); err != nil {
			return fmt.Errorf("line %d: %w", key.Line, err)
		}
	}
	return nil
}

// checkProjectFields rejects unknown keys in a flat project entry.
// Node.Decode does not apply the decoder's KnownFields setting.
func checkProjectFields(id string, value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(value.Content); i += 2 {
		field := value.Content[i]
		switch field.Value {
		case "category", "subcategory":
		default:
			return fmt.Errorf("line %d: projects %q: unknown field %q", field.Line, id, field.Value)
		}
	}
	return nil
}
