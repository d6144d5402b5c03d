package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/spas-edu/spas-server/internal/allocate"
	api "github.com/spas-edu/spas-server/internal/api/http"
	"github.com/spas-edu/spas-server/internal/audit"
	"github.com/spas-edu/spas-server/internal/auth"
	"github.com/spas-edu/spas-server/internal/config"
	"github.com/spas-edu/spas-server/internal/dashboard"
	"github.com/spas-edu/spas-server/internal/db"
	"github.com/spas-edu/spas-server/internal/directory"
	"github.com/spas-edu/spas-server/internal/exams"
	"github.com/spas-edu/spas-server/internal/marks"
	"github.com/spas-edu/spas-server/internal/notify"
	"github.com/spas-edu/spas-server/internal/rbac"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("read config")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}

	// --- Stores and services ---
	dirStore := directory.NewSQLStore(dbh)
	dirSvc := directory.NewService(dirStore)
	allocStore := allocate.NewSQLStore(dbh)
	allocator := allocate.NewAllocator(allocStore, dirStore, cfg.Exam.MaxSubjectsPerTeacher)
	marksStore := marks.NewSQLStore(dbh)
	marksSvc := marks.NewService(marksStore, dirStore, allocStore)
	examStore := exams.NewSQLStore(dbh)
	examSvc := exams.NewService(examStore, dirStore, cfg.Exam.MaxInvigilatorDuties)
	notifySvc := notify.NewService(notify.NewSQLStore(dbh))
	dashSvc := dashboard.NewService(dashboard.NewSQLStore(dbh), 30*time.Second)
	authSvc := auth.NewAuthService(cfg.AuthSecret, dirStore)
	auditRec := audit.NewRecorder(dbh)

	year := func() string {
		if cfg.AcademicYear != "" {
			return cfg.AcademicYear
		}
		return directory.AcademicYearAt(time.Now())
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", api.LoginHandler(authSvc))

	// Protected API (JWT → identity in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authSvc.Middleware())
		pr.Use(audit.Middleware(auditRec))

		pr.With(rbac.Require("audit:view")).
			Get("/audit", api.AuditTrailHandler(auditRec))

		pr.With(rbac.Require("user:change_password")).
			Post("/me/password", api.ChangePasswordHandler(dirStore))

		// Marks entry and results
		pr.With(rbac.Require("marks:save")).
			Post("/subjects/{subjectID}/marks", api.SaveMarksHandler(marksSvc))
		pr.With(rbac.Require("marks:save")).
			Post("/subjects/{subjectID}/marks/bulk", api.BulkSaveMarksHandler(marksSvc))
		pr.With(rbac.Require("marks:calculate")).
			Post("/marks/calculate", api.CalculateHandler(marksSvc))
		pr.With(rbac.Require("results:view")).
			Get("/subjects/{subjectID}/results", api.ResultsHandler(marksSvc))
		pr.With(rbac.Require("results:export")).
			Get("/subjects/{subjectID}/results/export", api.ExportResultsHandler(marksSvc))
		pr.With(rbac.Require("marks:save")).
			Get("/subjects/{subjectID}/progress", api.ProgressHandler(marksSvc))
		pr.With(rbac.Require("results:view-own")).
			Get("/me/performance", api.MyPerformanceHandler(marksSvc, dirStore))
		// a student may fetch their own record without staff permissions
		pr.With(rbac.RequireOwnerOr("results:view", api.OwnsStudentRecord(dirStore))).
			Get("/students/{studentID}/performance", api.StudentPerformanceHandler(marksSvc))

		// Teacher-subject allocation
		pr.With(rbac.Require("allocation:assign")).
			Post("/allocations/assign", api.AssignSubjectsHandler(allocator, year))
		pr.With(rbac.Require("allocation:reset")).
			Post("/allocations/reset", api.ResetAllocationsHandler(allocator, year))
		pr.With(rbac.RequireAny("allocation:view", "allocation:assign")).
			Get("/allocations", api.ListAllocationsHandler(allocStore, year))
		pr.With(rbac.Require("allocation:view-own")).
			Get("/me/subjects", api.MySubjectsHandler(allocStore, year))

		// Exam office
		pr.With(rbac.Require("timetable:generate")).
			Post("/exams/timetable/generate", api.GenerateTimetableHandler(examSvc, cfg.Exam.DefaultDurationMin))
		pr.With(rbac.Require("timetable:confirm")).
			Post("/exams/timetable/confirm", api.ConfirmTimetableHandler(examSvc))
		pr.With(rbac.Require("timetable:approve")).
			Post("/exams/timetable/{entryID}/approve", api.ApproveTimetableHandler(examSvc))
		pr.With(rbac.Require("timetable:view")).
			Get("/exams/timetable", api.ListTimetableHandler(examSvc))
		pr.With(rbac.Require("rooms:manage")).
			Post("/exams/rooms", api.CreateRoomHandler(examSvc))
		pr.With(rbac.RequireAny("rooms:manage", "timetable:view")).
			Get("/exams/rooms", api.ListRoomsHandler(examSvc))
		pr.With(rbac.Require("seating:generate")).
			Post("/exams/timetable/{entryID}/seating/generate", api.GenerateSeatingHandler(examSvc))
		pr.With(rbac.Require("seating:confirm")).
			Post("/exams/timetable/{entryID}/seating/confirm", api.ConfirmSeatingHandler(examSvc))
		pr.With(rbac.RequireAny("seating:view", "invigilation:view")).
			Get("/exams/timetable/{entryID}/seating", api.ListSeatingHandler(examSvc))
		pr.With(rbac.Require("invigilation:generate")).
			Post("/exams/timetable/{entryID}/invigilation/generate", api.GenerateInvigilationHandler(examSvc))
		pr.With(rbac.Require("invigilation:confirm")).
			Post("/exams/timetable/{entryID}/invigilation/confirm", api.ConfirmInvigilationHandler(examSvc))
		pr.With(rbac.RequireAny("invigilation:view", "duties:view-own")).
			Get("/exams/timetable/{entryID}/invigilation", api.ListInvigilationHandler(examSvc))
		pr.With(rbac.Require("hallticket:view")).
			Get("/me/hallticket/{entryID}", api.HallTicketHandler(examSvc, dirStore))

		// Notifications
		pr.With(rbac.Require("notifications:publish")).
			Post("/notifications", api.PublishNotificationHandler(notifySvc))
		pr.With(rbac.Require("notifications:view")).
			Get("/notifications", api.ListNotificationsHandler(notifySvc))
		pr.With(rbac.Require("notifications:view")).
			Get("/notifications/unread", api.UnreadCountHandler(notifySvc))
		pr.With(rbac.Require("notifications:view")).
			Post("/notifications/{notificationID}/read", api.MarkReadHandler(notifySvc))

		// Dashboards
		pr.With(rbac.RequireAny("dashboard:department", "dashboard:college")).
			Get("/dashboard/departments/{departmentID}", api.DepartmentDashboardHandler(dashSvc, year))
		pr.With(rbac.Require("dashboard:college")).
			Get("/dashboard/college", api.CollegeDashboardHandler(dashSvc, year))

		// Registry
		pr.With(rbac.Require("directory:manage")).
			Post("/departments", api.CreateDepartmentHandler(dirStore))
		pr.Get("/departments", api.ListDepartmentsHandler(dirStore))
		pr.With(rbac.Require("directory:manage")).
			Post("/users", api.CreateUserHandler(dirStore))
		pr.With(rbac.Require("students:view")).
			Get("/departments/{departmentID}/teachers", api.ListTeachersHandler(dirStore))
		pr.With(rbac.Require("directory:manage")).
			Post("/subjects", api.CreateSubjectHandler(dirStore))
		pr.Get("/departments/{departmentID}/subjects", api.ListSubjectsHandler(dirStore))
		pr.With(rbac.Require("students:view")).
			Get("/subjects/{subjectID}/students", api.ListSubjectStudentsHandler(dirStore))
		pr.With(rbac.Require("directory:manage")).
			Post("/students", api.EnrollStudentHandler(dirSvc))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("db", cfg.DBDriver).
		Str("academic_year", year()).
		Msg("listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
