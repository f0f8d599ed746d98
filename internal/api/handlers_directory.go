// handlers_directory.go - Employee directory and reference data handlers
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/onboard-hub/backend/internal/directory"
	"github.com/onboard-hub/backend/internal/models"
	"github.com/onboard-hub/backend/internal/services"
)

// EmployeeLister is the directory view the listing endpoint needs.
// Implemented by directory.EmployeeStore.
type EmployeeLister interface {
	List(ctx context.Context, page, pageSize int) ([]models.Employee, int, error)
}

// DirectoryHandlerImpl implements the DirectoryHandler interface
type DirectoryHandlerImpl struct {
	employees   EmployeeLister
	departments *directory.Departments
	templates   *directory.Templates
	mailer      services.Mailer
}

// NewDirectoryHandler creates a new directory handler instance
func NewDirectoryHandler(employees EmployeeLister, departments *directory.Departments, templates *directory.Templates, mailer services.Mailer) DirectoryHandler {
	return &DirectoryHandlerImpl{
		employees:   employees,
		departments: departments,
		templates:   templates,
		mailer:      mailer,
	}
}

// HandleListEmployees returns a page of the employee directory.
func (h *DirectoryHandlerImpl) HandleListEmployees(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	employees, total, err := h.employees.List(c.Request().Context(), page, pageSize)
	if err != nil {
		return NewInternalError("failed to list employees", err)
	}

	return c.JSON(http.StatusOK, employeesResponse{
		Employees: employees,
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
	})
}

// HandleListDepartments returns the configured departments.
func (h *DirectoryHandlerImpl) HandleListDepartments(c echo.Context) error {
	return c.JSON(http.StatusOK, h.departments.ListDepartments())
}

// HandleUpdateDepartment replaces a department's provisioning mapping
// (groups, license type, email template, manager) and persists the
// registry.
func (h *DirectoryHandlerImpl) HandleUpdateDepartment(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var dept models.Department
	if err := c.Bind(&dept); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	updated, err := h.departments.Update(id, dept)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return NewNotFoundError("department", id)
		}
		return NewInternalError("failed to persist department registry", err)
	}
	return c.JSON(http.StatusOK, updated)
}

// HandleListGroups returns the security groups referenced by the
// department registry, for the mapping editor's picker.
func (h *DirectoryHandlerImpl) HandleListGroups(c echo.Context) error {
	return c.JSON(http.StatusOK, groupsResponse{Groups: h.departments.AvailableGroups()})
}

// HandleListTemplates returns all email templates.
func (h *DirectoryHandlerImpl) HandleListTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, h.templates.List())
}

// HandleGetTemplate returns one email template.
func (h *DirectoryHandlerImpl) HandleGetTemplate(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	tmpl, ok := h.templates.Get(id)
	if !ok {
		return NewNotFoundError("template", id)
	}
	return c.JSON(http.StatusOK, tmpl)
}

// HandleCreateTemplate registers a new email template.
func (h *DirectoryHandlerImpl) HandleCreateTemplate(c echo.Context) error {
	var tmpl models.EmailTemplate
	if err := c.Bind(&tmpl); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if tmpl.Name == "" {
		return NewValidationError("name")
	}
	if tmpl.Subject == "" {
		return NewValidationError("subject")
	}

	created := h.templates.Create(tmpl)
	return c.JSON(http.StatusCreated, created)
}

// HandleUpdateTemplate replaces an existing email template.
func (h *DirectoryHandlerImpl) HandleUpdateTemplate(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var tmpl models.EmailTemplate
	if err := c.Bind(&tmpl); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	updated, ok := h.templates.Update(id, tmpl)
	if !ok {
		return NewNotFoundError("template", id)
	}
	return c.JSON(http.StatusOK, updated)
}

// HandleSendWelcome hands a welcome mail off to the mail service.
func (h *DirectoryHandlerImpl) HandleSendWelcome(c echo.Context) error {
	var req sendWelcomeRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Employee.Email == "" {
		return NewValidationError("employee.email")
	}

	tmpl, ok := h.templates.Get(req.TemplateID)
	if !ok {
		return NewNotFoundError("template", req.TemplateID)
	}

	if err := h.mailer.SendWelcome(c.Request().Context(), req.Employee, tmpl); err != nil {
		return NewInternalError("failed to queue welcome mail", err)
	}
	return c.NoContent(http.StatusAccepted)
}

// Request/Response types

type employeesResponse struct {
	Employees []models.Employee `json:"employees"`
	Page      int               `json:"page"`
	PageSize  int               `json:"pageSize"`
	Total     int               `json:"total"`
}

type groupsResponse struct {
	Groups []string `json:"groups"`
}

type sendWelcomeRequest struct {
	Employee   models.Employee `json:"employee"`
	TemplateID string          `json:"templateId"`
}
