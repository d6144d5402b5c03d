package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/spas-edu/spas-server/internal/grading"
)

// Series is a ready-to-plot chart: one label per value.
type Series struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Overview aggregates one department's standing for a year.
type Overview struct {
	DepartmentID string             `json:"department_id"`
	AcademicYear string             `json:"academic_year"`
	Students     int                `json:"students"`
	Stats        grading.BatchStats `json:"stats"`
	RiskSeries   Series             `json:"risk_series"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// CollegeOverview is the principal's view: every department at once.
type CollegeOverview struct {
	AcademicYear string     `json:"academic_year"`
	Departments  []Overview `json:"departments"`
}

// Store reads the aggregates the dashboards are built from.
type Store interface {
	RiskRows(ctx context.Context, departmentID, academicYear string) ([]grading.RowStat, error)
	CountStudents(ctx context.Context, departmentID string) (int, error)
	DepartmentIDs(ctx context.Context) ([]string, error)
}

// Service computes dashboards and caches them briefly; the numbers
// change on every marks save, so staleness is capped, not avoided.
type Service struct {
	store Store
	cache *ttlcache.Cache[string, Overview]
}

func NewService(store Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	cache := ttlcache.New(
		ttlcache.WithTTL[string, Overview](ttl),
		ttlcache.WithDisableTouchOnHit[string, Overview](),
	)
	go cache.Start()
	return &Service{store: store, cache: cache}
}

// Department builds (or serves from cache) one department's overview.
func (s *Service) Department(ctx context.Context, departmentID, academicYear string) (Overview, error) {
	key := departmentID + "|" + academicYear
	if item := s.cache.Get(key); item != nil {
		return item.Value(), nil
	}
	ov, err := s.build(ctx, departmentID, academicYear)
	if err != nil {
		return Overview{}, err
	}
	s.cache.Set(key, ov, ttlcache.DefaultTTL)
	return ov, nil
}

// College builds the cross-department overview. Each department goes
// through the same cache as the single-department endpoint.
func (s *Service) College(ctx context.Context, academicYear string) (CollegeOverview, error) {
	ids, err := s.store.DepartmentIDs(ctx)
	if err != nil {
		return CollegeOverview{}, fmt.Errorf("list departments: %w", err)
	}
	out := CollegeOverview{AcademicYear: academicYear}
	for _, id := range ids {
		ov, err := s.Department(ctx, id, academicYear)
		if err != nil {
			return CollegeOverview{}, err
		}
		out.Departments = append(out.Departments, ov)
	}
	return out, nil
}

func (s *Service) build(ctx context.Context, departmentID, academicYear string) (Overview, error) {
	rows, err := s.store.RiskRows(ctx, departmentID, academicYear)
	if err != nil {
		return Overview{}, fmt.Errorf("risk rows: %w", err)
	}
	students, err := s.store.CountStudents(ctx, departmentID)
	if err != nil {
		return Overview{}, fmt.Errorf("count students: %w", err)
	}
	stats := grading.Analyze(rows)
	return Overview{
		DepartmentID: departmentID,
		AcademicYear: academicYear,
		Students:     students,
		Stats:        stats,
		RiskSeries: Series{
			Labels: []string{
				string(grading.RiskCritical),
				string(grading.RiskAverage),
				string(grading.RiskSafe),
				string(grading.RiskBest),
			},
			Values: []int{stats.Critical, stats.Average, stats.Safe, stats.Best},
		},
		GeneratedAt: time.Now().UTC(),
	}, nil
}
