package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/spas-edu/spas-server/internal/auth"
	"github.com/spas-edu/spas-server/internal/directory"
)

type createDepartmentReq struct {
	Code string `json:"code" validate:"required,uppercase,min=2,max=6"`
	Name string `json:"name" validate:"required,max=100"`
}

// POST /departments
func CreateDepartmentHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDepartmentReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad department payload: "+err.Error())
			return
		}
		d, err := store.CreateDepartment(r.Context(), directory.Department{
			Code: req.Code, Name: req.Name,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "create department")
			return
		}
		writeJSON(w, http.StatusCreated, d)
	}
}

// GET /departments
func ListDepartmentsHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := store.ListDepartments(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load departments")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"departments": ds})
	}
}

type createUserReq struct {
	Username     string `json:"username" validate:"required,min=3,max=50"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	FullName     string `json:"full_name" validate:"required,max=100"`
	Role         string `json:"role" validate:"required,oneof=teacher hod coordinator principal"`
	DepartmentID string `json:"department_id"`
}

// POST /users
//
// Staff accounts only; student accounts come from enrollment.
func CreateUserHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad user payload: "+err.Error())
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "hash password")
			return
		}
		u, err := store.CreateUser(r.Context(), directory.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			FullName:     req.FullName,
			Role:         req.Role,
			DepartmentID: req.DepartmentID,
			IsActive:     true,
		})
		if err != nil {
			writeError(w, http.StatusConflict, "create user: username or email taken")
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

// GET /departments/{departmentID}/teachers
func ListTeachersHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts, err := store.ListTeachers(r.Context(), chi.URLParam(r, "departmentID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load teachers")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"teachers": ts})
	}
}

type createSubjectReq struct {
	Code         string `json:"code" validate:"required,max=10"`
	Name         string `json:"name" validate:"required,max=100"`
	Credits      int    `json:"credits" validate:"omitempty,min=1,max=6"`
	DepartmentID string `json:"department_id" validate:"required"`
	Semester     int    `json:"semester" validate:"required,min=1,max=8"`
}

// POST /subjects
func CreateSubjectHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSubjectReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad subject payload: "+err.Error())
			return
		}
		sub, err := store.CreateSubject(r.Context(), directory.Subject{
			Code:         req.Code,
			Name:         req.Name,
			Credits:      req.Credits,
			DepartmentID: req.DepartmentID,
			Semester:     req.Semester,
		})
		if err != nil {
			writeError(w, http.StatusConflict, "create subject: code taken")
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}

// GET /departments/{departmentID}/subjects?semester=N
func ListSubjectsHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var semesters []int
		if s := r.URL.Query().Get("semester"); s != "" {
			sem, err := strconv.Atoi(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "semester must be a number")
				return
			}
			semesters = append(semesters, sem)
		}
		subs, err := store.ListSubjects(r.Context(), chi.URLParam(r, "departmentID"), semesters...)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load subjects")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"subjects": subs})
	}
}

type enrollStudentReq struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	DepartmentID string `json:"department_id" validate:"required"`
	BatchYear    int    `json:"batch_year" validate:"omitempty,min=2000,max=2100"`
	Semester     int    `json:"semester" validate:"omitempty,min=1,max=8"`
	Password     string `json:"password" validate:"omitempty,min=8"`
}

// POST /students
func EnrollStudentHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enrollStudentReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad student payload: "+err.Error())
			return
		}
		in := directory.EnrollStudentInput{
			Name:         req.Name,
			Email:        req.Email,
			DepartmentID: req.DepartmentID,
			BatchYear:    req.BatchYear,
			Semester:     req.Semester,
		}
		if req.Password != "" {
			hash, err := auth.HashPassword(req.Password)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "hash password")
				return
			}
			in.PasswordHash = hash
		}
		st, err := svc.EnrollStudent(r.Context(), in)
		if err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no such department")
				return
			}
			writeError(w, http.StatusInternalServerError, "enroll student")
			return
		}
		writeJSON(w, http.StatusCreated, st)
	}
}

// GET /subjects/{subjectID}/students
func ListSubjectStudentsHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sts, err := store.ListStudentsForSubject(r.Context(), chi.URLParam(r, "subjectID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load students")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"students": sts})
	}
}
