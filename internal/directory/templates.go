package directory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/onboard-hub/backend/internal/models"
)

// templatesFile is the on-disk YAML shape.
type templatesFile struct {
	Templates []models.EmailTemplate `yaml:"templates"`
}

// Templates manages welcome-mail templates. Templates are loaded from
// YAML at startup; runtime edits stay in memory for the session.
type Templates struct {
	mu   sync.RWMutex
	list []models.EmailTemplate
}

// LoadTemplates reads templates from a YAML file. A missing file yields
// an empty registry rather than an error.
func LoadTemplates(path string) (*Templates, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Templates{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading templates file: %w", err)
	}

	var file templatesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing templates file: %w", err)
	}
	return &Templates{list: file.Templates}, nil
}

// List returns all templates.
func (t *Templates) List() []models.EmailTemplate {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.EmailTemplate, len(t.list))
	copy(out, t.list)
	return out
}

// Get returns one template by ID.
func (t *Templates) Get(id string) (models.EmailTemplate, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, tmpl := range t.list {
		if tmpl.ID == id {
			return tmpl, true
		}
	}
	return models.EmailTemplate{}, false
}

// Create adds a template and returns it with its assigned ID.
func (t *Templates) Create(tmpl models.EmailTemplate) models.EmailTemplate {
	tmpl.ID = uuid.New().String()

	t.mu.Lock()
	t.list = append(t.list, tmpl)
	t.mu.Unlock()
	return tmpl
}

// Update replaces an existing template.
func (t *Templates) Update(id string, tmpl models.EmailTemplate) (models.EmailTemplate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.list {
		if t.list[i].ID == id {
			tmpl.ID = id
			t.list[i] = tmpl
			return tmpl, true
		}
	}
	return models.EmailTemplate{}, false
}

// LogMailer is the default Mailer: it hands the message off to the
// process log only. Actual delivery belongs to the external mail
// service and is wired in deployments that have one.
type LogMailer struct{}

// SendWelcome logs the delivery request.
func (LogMailer) SendWelcome(ctx context.Context, employee models.Employee, template models.EmailTemplate) error {
	fmt.Printf("[Mailer] Welcome mail %q queued for %s <%s>\n", template.Name, employee.Name, employee.Email)
	return nil
}
