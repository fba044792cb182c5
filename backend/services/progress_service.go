package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/katuripu/katuripu/backend/gamification"
	"github.com/katuripu/katuripu/backend/metrics"
	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/utils"
)

type ProgressService struct {
	DB  *gorm.DB
	Log *utils.Logger
}

func NewProgressService(db *gorm.DB, log *utils.Logger) *ProgressService {
	return &ProgressService{DB: db, Log: log}
}

type AchievementView struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// CompletionResult is returned by an exercise toggle so the client can
// show toasts and confetti.
type CompletionResult struct {
	Progress        models.UserExerciseProgress `json:"progress"`
	XPGained        int                         `json:"xp_gained"`
	Points          int                         `json:"points"`
	Level           int                         `json:"level"`
	LevelUp         bool                        `json:"level_up"`
	NewAchievements []AchievementView           `json:"new_achievements"`
}

type GamificationView struct {
	Points             int               `json:"points"`
	Level              int               `json:"level"`
	LevelPoints        int               `json:"level_points"`
	LevelSpan          int               `json:"level_span"`
	Streak             int               `json:"streak"`
	LongestStreak      int               `json:"longest_streak"`
	ExercisesCompleted int               `json:"exercises_completed"`
	RoadmapsCompleted  int               `json:"roadmaps_completed"`
	Achievements       []AchievementView `json:"achievements"`
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
	Level    int    `json:"level"`
}

// roadmapCount is a user's distinct completed and total exercises in one roadmap.
type roadmapCount struct {
	RoadmapID uint
	Total     int
	Done      int
}

func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return done * 100 / total
}

// SetExerciseCompletion records whether the user completed the exercise.
// XP is awarded on the first completion only and never taken back.
func (s *ProgressService) SetExerciseCompletion(ctx context.Context, userID, exerciseID uint, completed bool, lang string) (*CompletionResult, error) {
	now := timeNow()
	result := &CompletionResult{NewAchievements: []AchievementView{}}
	var gained *gamification.Result

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exercise models.Exercise
		if err := tx.Select("id", "difficulty").First(&exercise, exerciseID).Error; err != nil {
			return notFound(err)
		}

		fresh := models.UserExerciseProgress{UserID: userID, ExerciseID: exerciseID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
			return err
		}
		var row models.UserExerciseProgress
		if err := tx.Clauses(lockingClause(tx)...).Where("user_id = ? AND exercise_id = ?", userID, exerciseID).First(&row).Error; err != nil {
			return err
		}

		if completed && !row.Completed {
			row.CompletedAt = &now
		}
		if !completed {
			row.CompletedAt = nil
		}
		row.Completed = completed
		if err := tx.Model(&row).Select("completed", "completed_at").Updates(&row).Error; err != nil {
			return err
		}

		if completed && !row.XPAwarded {
			// the conditional update makes a concurrent duplicate toggle award nothing
			res := tx.Model(&models.UserExerciseProgress{}).
				Where("id = ? AND xp_awarded = ?", row.ID, false).
				Update("xp_awarded", true)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				row.XPAwarded = true
				r, err := s.award(tx, userID, exercise.Difficulty, now)
				if err != nil {
					return err
				}
				gained = &r
			}
		}
		result.Progress = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordExerciseToggle(completed)
	if gained != nil {
		ids := make([]string, 0, len(gained.NewAchievements))
		for _, a := range gained.NewAchievements {
			ids = append(ids, a.ID)
			result.NewAchievements = append(result.NewAchievements, AchievementView{
				ID: a.ID, Title: a.Title(lang), Unlocked: true, UnlockedAt: &now,
			})
		}
		metrics.RecordGamification(gained.XPGained, gained.LevelUp, ids)
		result.XPGained = gained.XPGained
		result.Points = gained.State.Points
		result.Level = gained.Level
		result.LevelUp = gained.LevelUp
		s.Log.Info("exercise completed", "user_id", userID, "exercise_id", exerciseID,
			"xp", gained.XPGained, "level", gained.Level, "achievements", ids)
		return result, nil
	}

	state, err := s.state(s.DB.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	result.Points = state.Points
	result.Level = gamification.LevelForPoints(state.Points)
	return result, nil
}

func (s *ProgressService) award(tx *gorm.DB, userID uint, difficulty string, now time.Time) (gamification.Result, error) {
	record, err := loadStateRecord(tx, userID)
	if err != nil {
		return gamification.Result{}, err
	}
	counts, err := roadmapCounts(tx, userID)
	if err != nil {
		return gamification.Result{}, err
	}
	finished := 0
	for _, c := range counts {
		if c.Total > 0 && c.Done == c.Total {
			finished++
		}
	}

	r := gamification.ApplyCompletion(record.State.Data(), difficulty, finished, now)
	err = tx.Model(&models.UserGamificationState{}).Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"points": r.State.Points,
			"state":  datatypes.NewJSONType(r.State),
		}).Error
	return r, err
}

// loadStateRecord returns the user's gamification row, creating it first if needed.
func loadStateRecord(tx *gorm.DB, userID uint) (*models.UserGamificationState, error) {
	record := models.UserGamificationState{
		UserID: userID,
		State:  datatypes.NewJSONType(gamification.NewState()),
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return nil, err
	}
	var stored models.UserGamificationState
	if err := tx.Clauses(lockingClause(tx)...).Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *ProgressService) state(db *gorm.DB, userID uint) (models.GamificationState, error) {
	var record models.UserGamificationState
	err := db.Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return gamification.NewState(), nil
	}
	if err != nil {
		return models.GamificationState{}, err
	}
	return record.State.Data(), nil
}

const roadmapCountsSQL = `
SELECT n.roadmap_id AS roadmap_id,
       COUNT(DISTINCT ne.exercise_id) AS total,
       COUNT(DISTINCT CASE WHEN p.completed = ? THEN ne.exercise_id END) AS done
FROM node_exercises ne
JOIN roadmap_nodes n ON n.id = ne.node_id
LEFT JOIN user_exercise_progress p ON p.exercise_id = ne.exercise_id AND p.user_id = ?
GROUP BY n.roadmap_id`

func roadmapCounts(db *gorm.DB, userID uint) ([]roadmapCount, error) {
	var counts []roadmapCount
	err := db.Raw(roadmapCountsSQL, true, userID).Scan(&counts).Error
	return counts, err
}

// RoadmapProgress computes per-node and overall progress of a user. Nodes are
// listed in prerequisite order. A node is locked while one of its
// prerequisites is not done; a node without exercises is done once unlocked.
func (s *ProgressService) RoadmapProgress(ctx context.Context, viewer Viewer, roadmapID uint, lang string) (*models.RoadmapProgress, error) {
	db := s.DB.WithContext(ctx)
	userID := viewer.UserID
	var roadmap models.Roadmap
	err := db.Preload("Nodes").Preload("Nodes.Exercises").First(&roadmap, roadmapID).Error
	if err != nil {
		return nil, notFound(err)
	}
	if !roadmap.IsPublished && !viewer.IsAdmin() {
		return nil, ErrNotFound
	}
	localizeRoadmap(&roadmap, lang)

	nodeIDs, edges, err := loadGraph(db, roadmapID)
	if err != nil {
		return nil, err
	}
	order, ok := topoSort(nodeIDs, edges)
	if !ok {
		return nil, ErrCycle
	}

	var done []uint
	err = db.Model(&models.UserExerciseProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Where("exercise_id IN (?)", db.Model(&models.NodeExercise{}).Select("exercise_id").
			Where("node_id IN (?)", db.Model(&models.RoadmapNode{}).Select("id").Where("roadmap_id = ?", roadmapID))).
		Pluck("exercise_id", &done).Error
	if err != nil {
		return nil, err
	}
	completedSet := make(map[uint]struct{}, len(done))
	for _, id := range done {
		completedSet[id] = struct{}{}
	}

	prereqs := make(map[uint][]uint)
	for _, e := range edges {
		prereqs[e.target] = append(prereqs[e.target], e.source)
	}
	nodes := make(map[uint]*models.RoadmapNode, len(roadmap.Nodes))
	for i := range roadmap.Nodes {
		nodes[roadmap.Nodes[i].ID] = &roadmap.Nodes[i]
	}

	out := &models.RoadmapProgress{RoadmapID: roadmap.ID, Title: roadmap.Title, Nodes: make([]models.NodeProgress, 0, len(order))}
	finished := make(map[uint]bool, len(order))
	distinct := make(map[uint]struct{})
	for _, id := range order {
		node := nodes[id]
		np := models.NodeProgress{NodeID: id, Title: node.Title, Total: len(node.Exercises)}
		for _, link := range node.Exercises {
			distinct[link.ExerciseID] = struct{}{}
			if _, ok := completedSet[link.ExerciseID]; ok {
				np.Completed++
			}
		}
		np.Percent = percent(np.Completed, np.Total)

		locked := false
		for _, p := range prereqs[id] {
			if !finished[p] {
				locked = true
				break
			}
		}
		switch {
		case locked:
			np.Status = models.NodeStatusLocked
		case np.Completed == np.Total:
			np.Status = models.NodeStatusCompleted
			finished[id] = true
		case np.Completed > 0:
			np.Status = models.NodeStatusInProgress
		default:
			np.Status = models.NodeStatusAvailable
		}
		out.Nodes = append(out.Nodes, np)
	}

	out.Total = len(distinct)
	for id := range distinct {
		if _, ok := completedSet[id]; ok {
			out.Completed++
		}
	}
	out.Percent = percent(out.Completed, out.Total)
	return out, nil
}

// Overview lists every roadmap in which the user completed at least one exercise.
func (s *ProgressService) Overview(ctx context.Context, userID uint, lang string) ([]models.RoadmapProgress, error) {
	db := s.DB.WithContext(ctx)
	counts, err := roadmapCounts(db, userID)
	if err != nil {
		return nil, err
	}
	touched := make(map[uint]roadmapCount)
	ids := make([]uint, 0, len(counts))
	for _, c := range counts {
		if c.Done > 0 {
			touched[c.RoadmapID] = c
			ids = append(ids, c.RoadmapID)
		}
	}
	out := make([]models.RoadmapProgress, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var roadmaps []models.Roadmap
	if err := db.Where("id IN ?", ids).Find(&roadmaps).Error; err != nil {
		return nil, err
	}
	for i := range roadmaps {
		localizeRoadmap(&roadmaps[i], lang)
		c := touched[roadmaps[i].ID]
		out = append(out, models.RoadmapProgress{
			RoadmapID: roadmaps[i].ID,
			Title:     roadmaps[i].Title,
			Total:     c.Total,
			Completed: c.Done,
			Percent:   percent(c.Done, c.Total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Percent != out[j].Percent {
			return out[i].Percent > out[j].Percent
		}
		return out[i].RoadmapID < out[j].RoadmapID
	})
	return out, nil
}

// Gamification returns the user's state with the full achievement catalog.
func (s *ProgressService) Gamification(ctx context.Context, userID uint, lang string) (*GamificationView, error) {
	state, err := s.state(s.DB.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	into, span := gamification.LevelProgress(state.Points)
	view := &GamificationView{
		Points:             state.Points,
		Level:              gamification.LevelForPoints(state.Points),
		LevelPoints:        into,
		LevelSpan:          span,
		Streak:             gamification.CurrentStreak(state, timeNow()),
		LongestStreak:      state.LongestStreak,
		ExercisesCompleted: state.ExercisesCompleted,
		RoadmapsCompleted:  state.RoadmapsCompleted,
		Achievements:       make([]AchievementView, 0, len(gamification.Catalog)),
	}
	unlocked := make(map[string]time.Time, len(state.Achievements))
	for _, a := range state.Achievements {
		unlocked[a.ID] = a.UnlockedAt
	}
	for _, a := range gamification.Catalog {
		v := AchievementView{ID: a.ID, Title: a.Title(lang)}
		if at, ok := unlocked[a.ID]; ok {
			at := at
			v.Unlocked = true
			v.UnlockedAt = &at
		}
		view.Achievements = append(view.Achievements, v)
	}
	return view, nil
}

// Leaderboard ranks users by points, ties by user id.
func (s *ProgressService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	var rows []struct {
		UserID   uint
		Username string
		Points   int
	}
	err := s.DB.WithContext(ctx).
		Table("user_gamification_states AS g").
		Select("g.user_id AS user_id, u.username AS username, g.points AS points").
		Joins("JOIN users u ON u.id = g.user_id").
		Order("g.points DESC, g.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, 0, len(rows))
	for i, r := range rows {
		out = append(out, LeaderboardEntry{
			Rank:     i + 1,
			UserID:   r.UserID,
			Username: r.Username,
			Points:   r.Points,
			Level:    gamification.LevelForPoints(r.Points),
		})
	}
	return out, nil
}
