package directory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/onboard-hub/backend/internal/models"
)

// EmployeeStore persists successfully onboarded employees in an
// embedded DuckDB database so the directory survives restarts and the
// dashboard can aggregate over it.
type EmployeeStore struct {
	db *sql.DB
}

// NewEmployeeStore opens (or creates) the employee database at dbPath.
func NewEmployeeStore(dbPath string) (*EmployeeStore, error) {
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening employee database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS employees (
			id         VARCHAR PRIMARY KEY,
			name       VARCHAR NOT NULL,
			email      VARCHAR NOT NULL,
			department VARCHAR NOT NULL,
			role       VARCHAR,
			manager    VARCHAR,
			start_date VARCHAR,
			status     VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating employees table: %w", err)
	}

	return &EmployeeStore{db: db}, nil
}

// Insert stores one onboarded employee.
func (s *EmployeeStore) Insert(ctx context.Context, e models.Employee) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, department, role, manager, start_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Email, e.Department, e.Role, e.Manager, e.StartDate,
		string(e.Status), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting employee %s: %w", e.Email, err)
	}
	return nil
}

// List returns a page of employees ordered by creation time, newest
// first, along with the total count.
func (s *EmployeeStore) List(ctx context.Context, page, pageSize int) ([]models.Employee, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting employees: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, department, role, manager, start_date, status, created_at, updated_at
		FROM employees
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("querying employees: %w", err)
	}
	defer rows.Close()

	var out []models.Employee
	for rows.Next() {
		var e models.Employee
		var status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Department, &e.Role,
			&e.Manager, &e.StartDate, &status, &createdAt, &updatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning employee row: %w", err)
		}
		e.Status = models.EmployeeStatus(status)
		e.CreatedAt = &createdAt
		e.UpdatedAt = &updatedAt
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating employees: %w", err)
	}

	return out, total, nil
}

// Count returns the total number of onboarded employees.
func (s *EmployeeStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting employees: %w", err)
	}
	return n, nil
}

// CountCreatedSince returns how many employees were created at or
// after the given time. Used for the dashboard's completed-today stat.
func (s *EmployeeStore) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employees WHERE created_at >= ?`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting recent employees: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *EmployeeStore) Close() error {
	return s.db.Close()
}
