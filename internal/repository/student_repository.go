// Package repository implements data access over MySQL. All queries use
// plain database/sql with hand-written statements; lookup misses and
// duplicate-key violations are translated into fault kinds so handlers
// never inspect driver errors.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/study-room-reservation/internal/fault"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/utils"
)

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// StudentRepo provides access to the students table.
type StudentRepo struct{ DB *sql.DB }

// NewStudentRepo constructs a StudentRepo with the given DB handle.
func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{DB: db} }

const studentColumns = `id, username, password_hash, name, student_id, email, phone, type, role, created_at, updated_at`

func scanStudent(row *sql.Row) (*model.Student, error) {
	var s model.Student
	err := row.Scan(&s.ID, &s.Username, &s.PasswordHash, &s.Name, &s.StudentID,
		&s.Email, &s.Phone, &s.Type, &s.Role, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "student not found")
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts a student, hashing the plain password with bcrypt. A
// duplicate username yields a Conflict fault.
func (r *StudentRepo) Create(ctx context.Context, s *model.Student, password string, bcryptCost int) error {
	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return err
	}
	const q = `INSERT INTO students (username, password_hash, name, student_id, email, phone, type, role)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, q, s.Username, hash, s.Name, s.StudentID, s.Email, s.Phone, s.Type, s.Role)
	if err != nil {
		if isDuplicate(err) {
			return fault.New(fault.Conflict, "username already exists")
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.PasswordHash = hash
	return nil
}

// EnsureDefaults creates the built-in admin and demo student accounts
// when they are absent. Run once at startup; concurrent starts are safe
// because a racing insert just reports a duplicate, which is ignored.
func (r *StudentRepo) EnsureDefaults(ctx context.Context, bcryptCost int) error {
	defaults := []struct {
		student  model.Student
		password string
	}{
		{model.Student{Username: "admin", Name: "Administrator", Role: "ADMIN"}, "admin123"},
		{model.Student{Username: "student", Name: "Demo Student", StudentID: "S0000001", Type: 1, Role: "STUDENT"}, "student123"},
	}
	for _, d := range defaults {
		if _, err := r.GetByUsername(ctx, d.student.Username); err == nil {
			continue
		} else if fault.KindOf(err) != fault.NotFound {
			return err
		}
		s := d.student
		if err := r.Create(ctx, &s, d.password, bcryptCost); err != nil {
			if fault.KindOf(err) == fault.Conflict {
				continue
			}
			return err
		}
	}
	return nil
}

// GetByUsername fetches a student by login name.
func (r *StudentRepo) GetByUsername(ctx context.Context, username string) (*model.Student, error) {
	const q = `SELECT ` + studentColumns + ` FROM students WHERE username = ? LIMIT 1`
	return scanStudent(r.DB.QueryRowContext(ctx, q, username))
}

// GetByID fetches a student by id.
func (r *StudentRepo) GetByID(ctx context.Context, id uint64) (*model.Student, error) {
	const q = `SELECT ` + studentColumns + ` FROM students WHERE id = ? LIMIT 1`
	return scanStudent(r.DB.QueryRowContext(ctx, q, id))
}

// List returns every registered student ordered by id.
func (r *StudentRepo) List(ctx context.Context) ([]model.Student, error) {
	const q = `SELECT ` + studentColumns + ` FROM students ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Username, &s.PasswordHash, &s.Name, &s.StudentID,
			&s.Email, &s.Phone, &s.Type, &s.Role, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
