package directory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/onboard-hub/backend/internal/models"
	"github.com/onboard-hub/backend/internal/services"
)

func TestLoadDepartments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "departments.yaml")
	content := `departments:
  - id: eng
    name: Engineering
    groups: [eng-all, eng-oncall]
    licenseType: E5
    emailTemplate: welcome-eng
    manager: lead@corp.example
  - id: sales
    name: Sales
    groups: [sales-all]
    licenseType: E3
    emailTemplate: welcome-default
    manager: sales@corp.example
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	depts, err := LoadDepartments(path)
	if err != nil {
		t.Fatalf("LoadDepartments: %v", err)
	}

	list := depts.ListDepartments()
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Name != "Engineering" || list[0].LicenseType != "E5" || len(list[0].Groups) != 2 {
		t.Errorf("unexpected first department: %+v", list[0])
	}

	known := depts.KnownDepartments()
	if _, ok := known["Engineering"]; !ok {
		t.Error("Engineering missing from known set")
	}
	if _, ok := known["Wizardry"]; ok {
		t.Error("unexpected department in known set")
	}
}

func TestLoadDepartmentsErrors(t *testing.T) {
	if _, err := LoadDepartments(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	os.WriteFile(empty, []byte("departments: []\n"), 0644)
	if _, err := LoadDepartments(empty); err == nil {
		t.Error("expected error for empty registry")
	}
}

func TestSaveDepartmentsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "departments.yaml")
	if err := SaveDepartments(path, DefaultDepartments); err != nil {
		t.Fatalf("SaveDepartments: %v", err)
	}

	depts, err := LoadDepartments(path)
	if err != nil {
		t.Fatalf("LoadDepartments: %v", err)
	}
	if len(depts.ListDepartments()) != len(DefaultDepartments) {
		t.Errorf("round trip lost departments")
	}
}

func TestTemplates(t *testing.T) {
	tmpls := &Templates{}

	created := tmpls.Create(models.EmailTemplate{Name: "Welcome", Subject: "Hi", Department: "Engineering"})
	if created.ID == "" {
		t.Fatal("Create did not assign an ID")
	}

	got, ok := tmpls.Get(created.ID)
	if !ok || got.Name != "Welcome" {
		t.Fatalf("Get returned %+v, %v", got, ok)
	}

	updated, ok := tmpls.Update(created.ID, models.EmailTemplate{Name: "Welcome v2"})
	if !ok || updated.Name != "Welcome v2" || updated.ID != created.ID {
		t.Errorf("Update returned %+v, %v", updated, ok)
	}

	if _, ok := tmpls.Update("nope", models.EmailTemplate{}); ok {
		t.Error("Update of unknown ID succeeded")
	}
}

func TestLoadOrSeedDepartmentsSeedsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "departments.yaml")

	depts, err := LoadOrSeedDepartments(path)
	if err != nil {
		t.Fatalf("LoadOrSeedDepartments: %v", err)
	}
	if len(depts.ListDepartments()) != len(DefaultDepartments) {
		t.Errorf("seeded registry has %d departments, want %d",
			len(depts.ListDepartments()), len(DefaultDepartments))
	}

	// The defaults must land on disk so the next start reads the same set.
	reloaded, err := LoadDepartments(path)
	if err != nil {
		t.Fatalf("reloading seeded file: %v", err)
	}
	if len(reloaded.ListDepartments()) != len(DefaultDepartments) {
		t.Error("seeded file does not round trip")
	}
}

func TestLoadOrSeedDepartmentsKeepsBrokenFile(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"corrupt yaml", "departments: [unterminated\n"},
		{"empty registry", "departments: []\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "departments.yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatalf("writing fixture: %v", err)
			}

			if _, err := LoadOrSeedDepartments(path); err == nil {
				t.Fatal("expected error for existing broken file")
			}

			// An existing file is the administrator's registry; it must
			// never be replaced with the defaults.
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("re-reading file: %v", err)
			}
			if string(data) != tc.content {
				t.Errorf("file was overwritten:\n%s", data)
			}
		})
	}
}

func TestDepartmentsUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "departments.yaml")
	if err := SaveDepartments(path, DefaultDepartments); err != nil {
		t.Fatalf("SaveDepartments: %v", err)
	}
	depts, err := LoadDepartments(path)
	if err != nil {
		t.Fatalf("LoadDepartments: %v", err)
	}

	updated, err := depts.Update("eng", models.Department{
		Name:        "Renamed",
		Groups:      []string{"eng-all", "eng-platform"},
		LicenseType: "E3",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != "eng" || updated.Name != "Engineering" {
		t.Errorf("Update changed identity: %+v", updated)
	}
	if updated.LicenseType != "E3" || len(updated.Groups) != 2 {
		t.Errorf("mapping not applied: %+v", updated)
	}

	// The edit must survive a restart.
	reloaded, err := LoadDepartments(path)
	if err != nil {
		t.Fatalf("reloading: %v", err)
	}
	var found bool
	for _, d := range reloaded.ListDepartments() {
		if d.ID == "eng" {
			found = true
			if d.LicenseType != "E3" || len(d.Groups) != 2 {
				t.Errorf("persisted mapping wrong: %+v", d)
			}
		}
	}
	if !found {
		t.Error("eng missing after reload")
	}

	if _, err := depts.Update("wizardry", models.Department{}); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Update of unknown ID returned %v, want not found", err)
	}
}

func TestAvailableGroups(t *testing.T) {
	depts := NewDepartments([]models.Department{
		{ID: "a", Name: "A", Groups: []string{"all-staff", "eng-all"}},
		{ID: "b", Name: "B", Groups: []string{"sales-all", "all-staff"}},
	})

	got := depts.AvailableGroups()
	want := []string{"all-staff", "eng-all", "sales-all"}
	if len(got) != len(want) {
		t.Fatalf("AvailableGroups = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AvailableGroups[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
