package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Viewer identifies the caller of a read operation.
type Viewer struct {
	UserID uint
	Role   string
}

func (v Viewer) IsAdmin() bool { return v.Role == models.RoleAdmin }

// Page is a 1-based pagination request.
type Page struct {
	Page     int
	PageSize int
}

// Normalize applies the default and maximum page size.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

func (p Page) offset() int { return (p.Page - 1) * p.PageSize }

// Services bundles every service over one database and cache.
type Services struct {
	Users     *UserService
	Subjects  *SubjectService
	Roadmaps  *RoadmapService
	Nodes     *NodeService
	Edges     *EdgeService
	Exercises *ExerciseService
	Progress  *ProgressService
	Analytics *AnalyticsService
}

func New(db *gorm.DB, rc *RoadmapCache, log *utils.Logger) *Services {
	return &Services{
		Users:     NewUserService(db, log),
		Subjects:  NewSubjectService(db, rc, log),
		Roadmaps:  NewRoadmapService(db, rc),
		Nodes:     NewNodeService(db, rc),
		Edges:     NewEdgeService(db, rc),
		Exercises: NewExerciseService(db, rc, log),
		Progress:  NewProgressService(db, log),
		Analytics: NewAnalyticsService(db),
	}
}

var timeNow = func() time.Time { return time.Now().UTC() }

func likePattern(s string) string {
	return "%" + s + "%"
}
