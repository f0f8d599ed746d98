package models

// Department is a configured target department. Records whose
// department does not match a configured name are routed to the invalid
// side of the partition.
type Department struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Groups        []string `json:"groups" yaml:"groups"`
	LicenseType   string   `json:"licenseType" yaml:"licenseType"`
	EmailTemplate string   `json:"emailTemplate" yaml:"emailTemplate"`
	Manager       string   `json:"manager" yaml:"manager"`
}

// EmailTemplate is a welcome-mail template associated with a department.
// Delivery itself is handled by an external mail service.
type EmailTemplate struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Subject    string `json:"subject" yaml:"subject"`
	Body       string `json:"body" yaml:"body"`
	Department string `json:"department" yaml:"department"`
	IsDefault  bool   `json:"isDefault" yaml:"isDefault"`
}

// Principal is the authenticated caller as reported by the identity
// provider. A zero Principal means the request is unauthenticated.
type Principal struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Provider    string `json:"provider"`
}

// Anonymous is used for audit attribution when no principal is present.
var Anonymous = Principal{ID: "anonymous", DisplayName: "Anonymous", Provider: "none"}

// DashboardStats is the aggregate view served to the dashboard.
type DashboardStats struct {
	TotalEmployees        int          `json:"totalEmployees"`
	ActiveOnboarding      int          `json:"activeOnboarding"`
	CompletedToday        int          `json:"completedToday"`
	FailedProcesses       int          `json:"failedProcesses"`
	AverageProcessingTime float64      `json:"averageProcessingTime"` // seconds
	RecentActivity        []AuditEntry `json:"recentActivity"`
}
