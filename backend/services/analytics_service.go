package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/katuripu/katuripu/backend/models"
)

const (
	recommendationLimit = 3
	activeWindow        = 7 * 24 * time.Hour
)

type AnalyticsService struct {
	DB *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db}
}

type LearnerStat struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Completed int    `json:"completed"`
	Percent   int    `json:"percent"`
}

type RoadmapAnalytics struct {
	RoadmapID      uint          `json:"roadmap_id"`
	Title          string        `json:"title"`
	TotalExercises int           `json:"total_exercises"`
	Learners       []LearnerStat `json:"learners"`
	AveragePercent float64       `json:"average_percent"`
}

type PlatformAnalytics struct {
	Users             int64 `json:"users"`
	Roadmaps          int64 `json:"roadmaps"`
	PublishedRoadmaps int64 `json:"published_roadmaps"`
	Exercises         int64 `json:"exercises"`
	Completions       int64 `json:"completions"`
	ActiveUsers       int64 `json:"active_users"`
}

type Activity struct {
	Start       time.Time                     `json:"start"`
	End         time.Time                     `json:"end"`
	Completions []models.UserExerciseProgress `json:"completions"`
	Logins      []models.LoginHistory         `json:"logins"`
}

const learnersSQL = `
SELECT n.roadmap_id AS roadmap_id, COUNT(DISTINCT p.user_id) AS learners
FROM user_exercise_progress p
JOIN node_exercises ne ON ne.exercise_id = p.exercise_id
JOIN roadmap_nodes n ON n.id = ne.node_id
WHERE p.completed = ?
GROUP BY n.roadmap_id`

// Recommendations suggests published roadmaps the user has not started:
// first those sharing a subject with roadmaps the user works on, then the
// ones with the most learners.
func (s *AnalyticsService) Recommendations(ctx context.Context, userID uint, lang string) ([]models.Roadmap, error) {
	db := s.DB.WithContext(ctx)
	counts, err := roadmapCounts(db, userID)
	if err != nil {
		return nil, err
	}
	started := make([]uint, 0, len(counts))
	for _, c := range counts {
		if c.Done > 0 {
			started = append(started, c.RoadmapID)
		}
	}

	activeSubjects := make(map[uint]bool)
	if len(started) > 0 {
		var subjectIDs []uint
		if err := db.Model(&models.Roadmap{}).Where("id IN ? AND subject_id IS NOT NULL", started).Pluck("subject_id", &subjectIDs).Error; err != nil {
			return nil, err
		}
		for _, id := range subjectIDs {
			activeSubjects[id] = true
		}
	}

	q := db.Where("is_published = ?", true)
	if len(started) > 0 {
		q = q.Where("id NOT IN ?", started)
	}
	var candidates []models.Roadmap
	if err := q.Preload("Subject").Find(&candidates).Error; err != nil {
		return nil, err
	}

	var popularity []struct {
		RoadmapID uint
		Learners  int
	}
	if err := db.Raw(learnersSQL, true).Scan(&popularity).Error; err != nil {
		return nil, err
	}
	learners := make(map[uint]int, len(popularity))
	for _, p := range popularity {
		learners[p.RoadmapID] = p.Learners
	}

	related := func(r models.Roadmap) bool {
		return r.SubjectID != nil && activeSubjects[*r.SubjectID]
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if related(a) != related(b) {
			return related(a)
		}
		if learners[a.ID] != learners[b.ID] {
			return learners[a.ID] > learners[b.ID]
		}
		return a.ID < b.ID
	})
	if len(candidates) > recommendationLimit {
		candidates = candidates[:recommendationLimit]
	}
	for i := range candidates {
		localizeRoadmap(&candidates[i], lang)
	}
	return candidates, nil
}

// Roadmap reports, for every user with at least one completed exercise in
// the roadmap, how far they got.
func (s *AnalyticsService) Roadmap(ctx context.Context, roadmapID uint) (*RoadmapAnalytics, error) {
	db := s.DB.WithContext(ctx)
	var roadmap models.Roadmap
	if err := db.First(&roadmap, roadmapID).Error; err != nil {
		return nil, notFound(err)
	}

	exerciseIDs := db.Model(&models.NodeExercise{}).Select("exercise_id").
		Where("node_id IN (?)", db.Model(&models.RoadmapNode{}).Select("id").Where("roadmap_id = ?", roadmapID))

	var total int64
	if err := db.Model(&models.NodeExercise{}).
		Where("node_id IN (?)", db.Model(&models.RoadmapNode{}).Select("id").Where("roadmap_id = ?", roadmapID)).
		Distinct("exercise_id").Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		UserID   uint
		Username string
		Done     int
	}
	err := db.Table("user_exercise_progress AS p").
		Select("p.user_id AS user_id, u.username AS username, COUNT(DISTINCT p.exercise_id) AS done").
		Joins("JOIN users u ON u.id = p.user_id").
		Where("p.completed = ? AND p.exercise_id IN (?)", true, exerciseIDs).
		Group("p.user_id, u.username").
		Order("done DESC, p.user_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := &RoadmapAnalytics{
		RoadmapID:      roadmap.ID,
		Title:          roadmap.Title,
		TotalExercises: int(total),
		Learners:       make([]LearnerStat, 0, len(rows)),
	}
	sum := 0
	for _, r := range rows {
		p := percent(r.Done, int(total))
		sum += p
		out.Learners = append(out.Learners, LearnerStat{UserID: r.UserID, Username: r.Username, Completed: r.Done, Percent: p})
	}
	if len(rows) > 0 {
		out.AveragePercent = float64(sum) / float64(len(rows))
	}
	return out, nil
}

func (s *AnalyticsService) Platform(ctx context.Context) (*PlatformAnalytics, error) {
	db := s.DB.WithContext(ctx)
	out := &PlatformAnalytics{}
	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{db.Model(&models.User{}), &out.Users},
		{db.Model(&models.Roadmap{}), &out.Roadmaps},
		{db.Model(&models.Roadmap{}).Where("is_published = ?", true), &out.PublishedRoadmaps},
		{db.Model(&models.Exercise{}), &out.Exercises},
		{db.Model(&models.UserExerciseProgress{}).Where("completed = ?", true), &out.Completions},
		{db.Model(&models.LoginHistory{}).Where("login_time >= ?", timeNow().Add(-activeWindow)).Distinct("user_id"), &out.ActiveUsers},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Activity lists the user's completions and logins between start and end.
func (s *AnalyticsService) Activity(ctx context.Context, userID uint, start, end time.Time) (*Activity, error) {
	db := s.DB.WithContext(ctx)
	out := &Activity{Start: start, End: end}
	if err := db.Where("user_id = ? AND completed = ? AND completed_at BETWEEN ? AND ?", userID, true, start, end).
		Order("completed_at").Find(&out.Completions).Error; err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ? AND login_time BETWEEN ? AND ?", userID, start, end).
		Order("login_time").Find(&out.Logins).Error; err != nil {
		return nil, err
	}
	return out, nil
}
