package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// EnrollStudentInput carries everything enrollment needs. PasswordHash
// is optional; without it no login account is created. A zero
// BatchYear is derived from the semester and the running academic
// year.
type EnrollStudentInput struct {
	Name         string
	Email        string
	DepartmentID string
	BatchYear    int
	Semester     int
	Username     string
	PasswordHash string
}

// Service wraps the registry store with the operations that are more
// than one statement.
type Service struct {
	store *SQLStore
	now   func() time.Time
}

func NewService(store *SQLStore) *Service { return &Service{store: store, now: time.Now} }

// EnrollStudent registers a student under the next free registration
// number of the department and batch, creating a login account when
// credentials are supplied.
func (s *Service) EnrollStudent(ctx context.Context, in EnrollStudentInput) (Student, error) {
	dept, err := s.store.GetDepartment(ctx, in.DepartmentID)
	if err != nil {
		return Student{}, fmt.Errorf("department: %w", err)
	}
	if in.BatchYear == 0 {
		// a semester-N cohort entered YearOfSemester(N)-1 academic years ago
		now := s.now()
		start := now.Year()
		if now.Month() < time.June {
			start--
		}
		in.BatchYear = start - (YearOfSemester(in.Semester) - 1)
	}
	seq, err := s.store.CountStudents(ctx, in.DepartmentID, in.BatchYear)
	if err != nil {
		return Student{}, fmt.Errorf("count students: %w", err)
	}
	regNum := FormatRegistrationNumber(dept.Code, in.BatchYear, seq+1)

	var userID string
	if in.PasswordHash != "" {
		username := in.Username
		if username == "" {
			username = regNum
		}
		u, err := s.store.CreateUser(ctx, User{
			Username:     username,
			Email:        in.Email,
			PasswordHash: in.PasswordHash,
			FullName:     in.Name,
			Role:         RoleStudent,
			DepartmentID: in.DepartmentID,
			IsActive:     true,
		})
		if err != nil {
			return Student{}, fmt.Errorf("create account: %w", err)
		}
		userID = u.ID
	}

	st, err := s.store.CreateStudent(ctx, Student{
		RegistrationNumber: regNum,
		Name:               in.Name,
		Email:              in.Email,
		UserID:             userID,
		DepartmentID:       in.DepartmentID,
		CurrentSemester:    in.Semester,
		BatchYear:          in.BatchYear,
		IsActive:           true,
	})
	if err != nil {
		return Student{}, fmt.Errorf("create student: %w", err)
	}
	log.Info().
		Str("registration_number", regNum).
		Str("department_id", in.DepartmentID).
		Msg("student enrolled")
	return st, nil
}
