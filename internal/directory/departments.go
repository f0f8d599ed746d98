// Package directory holds the configured organizational data the
// pipeline validates against and writes into: the department registry,
// the employee directory store and welcome-mail templates.
package directory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/onboard-hub/backend/internal/models"
	"github.com/onboard-hub/backend/internal/services"
)

// departmentsFile is the on-disk YAML shape.
type departmentsFile struct {
	Departments []models.Department `yaml:"departments"`
}

// Departments is the configured department registry. It supplies the
// validation partitioner's whitelist.
type Departments struct {
	mu   sync.RWMutex
	list []models.Department
	path string
}

// LoadDepartments reads the registry from a YAML file.
func LoadDepartments(path string) (*Departments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading departments file: %w", err)
	}

	var file departmentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing departments file: %w", err)
	}
	if len(file.Departments) == 0 {
		return nil, fmt.Errorf("departments file %s defines no departments", path)
	}

	return &Departments{list: file.Departments, path: path}, nil
}

// LoadOrSeedDepartments loads the registry, writing DefaultDepartments
// only when no file exists at path. Any error on an existing file is
// returned as-is so a hand-edited registry is never clobbered with the
// defaults.
func LoadOrSeedDepartments(path string) (*Departments, error) {
	d, err := LoadDepartments(path)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	fmt.Printf("[Directory] No department registry at %s, writing defaults\n", path)
	if err := SaveDepartments(path, DefaultDepartments); err != nil {
		return nil, err
	}
	return &Departments{list: DefaultDepartments, path: path}, nil
}

// NewDepartments builds an in-memory registry with no backing file.
// Edits to it are not persisted.
func NewDepartments(list []models.Department) *Departments {
	return &Departments{list: list}
}

// ListDepartments returns the configured departments.
func (d *Departments) ListDepartments() []models.Department {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.Department, len(d.list))
	copy(out, d.list)
	return out
}

// KnownDepartments returns the name set used by the partitioner.
func (d *Departments) KnownDepartments() map[string]struct{} {
	d.mu.RLock()
	defer d.mu.RUnlock()

	known := make(map[string]struct{}, len(d.list))
	for _, dept := range d.list {
		known[dept.Name] = struct{}{}
	}
	return known
}

// Update replaces the provisioning mapping (groups, license, template,
// manager) of an existing department and persists the registry when it
// is file-backed. The department name is the partitioner's key and
// stays fixed.
func (d *Departments) Update(id string, dept models.Department) (models.Department, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.list {
		if d.list[i].ID != id {
			continue
		}
		dept.ID = id
		dept.Name = d.list[i].Name
		d.list[i] = dept

		if d.path != "" {
			if err := SaveDepartments(d.path, d.list); err != nil {
				return models.Department{}, err
			}
		}
		return dept, nil
	}
	return models.Department{}, fmt.Errorf("%w: department %s", services.ErrNotFound, id)
}

// AvailableGroups returns the distinct security groups referenced
// across the registry, sorted.
func (d *Departments) AvailableGroups() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]struct{})
	groups := []string{}
	for _, dept := range d.list {
		for _, g := range dept.Groups {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			groups = append(groups, g)
		}
	}
	sort.Strings(groups)
	return groups
}

// DefaultDepartments is written on first run when no departments file
// exists yet.
var DefaultDepartments = []models.Department{
	{ID: "eng", Name: "Engineering", Groups: []string{"eng-all"}, LicenseType: "E5", EmailTemplate: "welcome-eng", Manager: "eng-lead@corp.example"},
	{ID: "sales", Name: "Sales", Groups: []string{"sales-all"}, LicenseType: "E3", EmailTemplate: "welcome-default", Manager: "sales-lead@corp.example"},
	{ID: "hr", Name: "HR", Groups: []string{"hr-all"}, LicenseType: "E3", EmailTemplate: "welcome-default", Manager: "hr-lead@corp.example"},
}

// SaveDepartments writes a registry YAML file, used to seed defaults.
func SaveDepartments(path string, list []models.Department) error {
	data, err := yaml.Marshal(departmentsFile{Departments: list})
	if err != nil {
		return fmt.Errorf("marshaling departments: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing departments file: %w", err)
	}
	return nil
}
