package services

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
	"gorm.io/gorm"
)

// fakeRepository is an in-memory Repository used across the service tests.
// Reads return copies so mutations only persist through Update, matching how
// the gorm-backed implementation behaves.
type fakeRepository struct {
	mu sync.Mutex

	// onUserGet, when set, runs before every user read, outside the map
	// lock. Lets tests stall a flow mid-transaction.
	onUserGet func(id uint)

	words        map[uint]*models.Word
	sessions     map[uint]*models.GameSession
	users        map[uint]*models.User
	achievements map[uint]*models.Achievement
	rewards      map[uint]*models.Reward
	tasks        map[uint]*models.Task

	nextWordID        uint
	nextSessionID     uint
	nextAchievementID uint
	nextRewardID      uint
	nextTaskID        uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		words:        make(map[uint]*models.Word),
		sessions:     make(map[uint]*models.GameSession),
		users:        make(map[uint]*models.User),
		achievements: make(map[uint]*models.Achievement),
		rewards:      make(map[uint]*models.Reward),
		tasks:        make(map[uint]*models.Task),
	}
}

func (f *fakeRepository) Words() repositories.WordRepository               { return &fakeWordRepo{f} }
func (f *fakeRepository) Sessions() repositories.SessionRepository        { return &fakeSessionRepo{f} }
func (f *fakeRepository) Users() repositories.UserRepository              { return &fakeUserRepo{f} }
func (f *fakeRepository) Achievements() repositories.AchievementRepository { return &fakeAchievementRepo{f} }
func (f *fakeRepository) Rewards() repositories.RewardRepository          { return &fakeRewardRepo{f} }
func (f *fakeRepository) Tasks() repositories.TaskRepository              { return &fakeTaskRepo{f} }

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }

// Seed helpers keep test setup short.

func (f *fakeRepository) addUser(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.Level == 0 {
		u.Level = 1
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeRepository) addWord(w *models.Word) *models.Word {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w.ID == 0 {
		f.nextWordID++
		w.ID = f.nextWordID
	} else if w.ID > f.nextWordID {
		f.nextWordID = w.ID
	}
	f.words[w.ID] = w
	return w
}

func (f *fakeRepository) getUser(id uint) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

func (f *fakeRepository) getSession(id uint) *models.GameSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[id]
}

func (f *fakeRepository) getTask(id uint) *models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks[id]
}

// ===== WORDS =====

type fakeWordRepo struct{ f *fakeRepository }

func wordMatches(w *models.Word, filters repositories.WordFilters) bool {
	if filters.ActiveOnly && !w.IsActive {
		return false
	}
	if filters.Difficulty != nil && w.Difficulty != *filters.Difficulty {
		return false
	}
	if filters.Domain != nil && w.Domain != *filters.Domain {
		return false
	}
	if filters.Period != nil && w.Period != *filters.Period {
		return false
	}
	if filters.Search != "" {
		s := strings.ToLower(filters.Search)
		if !strings.Contains(strings.ToLower(w.Text), s) &&
			!strings.Contains(strings.ToLower(w.MeaningPrimary), s) {
			return false
		}
	}
	return true
}

func (r *fakeWordRepo) matching(filters repositories.WordFilters) []*models.Word {
	var out []*models.Word
	for id := uint(1); id <= r.f.nextWordID; id++ {
		if w, ok := r.f.words[id]; ok && wordMatches(w, filters) {
			out = append(out, w)
		}
	}
	return out
}

func (r *fakeWordRepo) Create(ctx context.Context, word *models.Word) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, w := range r.f.words {
		if strings.EqualFold(w.Text, word.Text) {
			return gorm.ErrDuplicatedKey
		}
	}
	r.f.nextWordID++
	word.ID = r.f.nextWordID
	r.f.words[word.ID] = word
	return nil
}

func (r *fakeWordRepo) CreateBatch(ctx context.Context, words []*models.Word) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, word := range words {
		r.f.nextWordID++
		word.ID = r.f.nextWordID
		r.f.words[word.ID] = word
	}
	return nil
}

func (r *fakeWordRepo) GetByID(ctx context.Context, id uint) (*models.Word, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	w, ok := r.f.words[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *w
	return &copied, nil
}

func (r *fakeWordRepo) Update(ctx context.Context, word *models.Word) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.words[word.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *word
	r.f.words[word.ID] = &copied
	return nil
}

func (r *fakeWordRepo) List(ctx context.Context, filters repositories.WordFilters) ([]*models.Word, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	matched := r.matching(filters)
	total := int64(len(matched))
	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filters.Offset:]
		}
	}
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}
	return matched, total, nil
}

func (r *fakeWordRepo) CountMatching(ctx context.Context, filters repositories.WordFilters) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return int64(len(r.matching(filters))), nil
}

// Sample and SampleExcluding shuffle like the ORDER BY random() queries they
// stand in for; the distractor loop relies on varied draws.
func (r *fakeWordRepo) Sample(ctx context.Context, count int, filters repositories.WordFilters) ([]*models.Word, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	matched := r.matching(filters)
	rand.Shuffle(len(matched), func(i, j int) { matched[i], matched[j] = matched[j], matched[i] })
	if len(matched) > count {
		matched = matched[:count]
	}
	return matched, nil
}

func (r *fakeWordRepo) SampleExcluding(ctx context.Context, count int, excludeIDs []uint, filters repositories.WordFilters) ([]*models.Word, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	excluded := make(map[uint]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	matched := r.matching(filters)
	rand.Shuffle(len(matched), func(i, j int) { matched[i], matched[j] = matched[j], matched[i] })
	var out []*models.Word
	for _, w := range matched {
		if excluded[w.ID] {
			continue
		}
		out = append(out, w)
		if len(out) == count {
			break
		}
	}
	return out, nil
}

func (r *fakeWordRepo) RecordUsage(ctx context.Context, id uint, correct bool) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	w, ok := r.f.words[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	w.TimesUsed++
	if correct {
		w.CorrectCount++
	} else {
		w.WrongCount++
	}
	return nil
}

// ===== SESSIONS =====

type fakeSessionRepo struct{ f *fakeRepository }

func (r *fakeSessionRepo) Create(ctx context.Context, session *models.GameSession) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.nextSessionID++
	session.ID = r.f.nextSessionID
	copied := *session
	r.f.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id uint) (*models.GameSession, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	s, ok := r.f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *models.GameSession) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.sessions[session.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *session
	r.f.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetActiveByUser(ctx context.Context, userID uint) (*models.GameSession, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, s := range r.f.sessions {
		if s.UserID == userID && s.Status == models.SessionActive {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSessionRepo) List(ctx context.Context, filters repositories.SessionFilters) ([]*models.GameSession, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.GameSession
	for id := uint(1); id <= r.f.nextSessionID; id++ {
		s, ok := r.f.sessions[id]
		if !ok {
			continue
		}
		if filters.UserID != nil && s.UserID != *filters.UserID {
			continue
		}
		if filters.GameType != nil && s.GameType != *filters.GameType {
			continue
		}
		if filters.Status != nil && s.Status != *filters.Status {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	total := int64(len(out))
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

func (r *fakeSessionRepo) Leaderboard(ctx context.Context, gameType *models.GameType, limit int) ([]repositories.LeaderboardEntry, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	byUser := make(map[uint]*repositories.LeaderboardEntry)
	for _, s := range r.f.sessions {
		if s.Status != models.SessionCompleted {
			continue
		}
		if gameType != nil && s.GameType != *gameType {
			continue
		}
		e, ok := byUser[s.UserID]
		if !ok {
			e = &repositories.LeaderboardEntry{UserID: s.UserID}
			if u := r.f.users[s.UserID]; u != nil {
				e.Username = u.Username
				e.Level = u.Level
			}
			byUser[s.UserID] = e
		}
		e.TotalScore += s.Score
		e.TotalGames++
		if s.Score > e.BestScore {
			e.BestScore = s.Score
		}
	}
	var out []repositories.LeaderboardEntry
	for _, e := range byUser {
		e.AvgScore = float64(e.TotalScore) / float64(e.TotalGames)
		out = append(out, *e)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSessionRepo) StatsByUser(ctx context.Context, userID uint) ([]repositories.GameTypeStat, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	byType := make(map[models.GameType]*repositories.GameTypeStat)
	for _, s := range r.f.sessions {
		if s.UserID != userID || s.Status != models.SessionCompleted {
			continue
		}
		st, ok := byType[s.GameType]
		if !ok {
			st = &repositories.GameTypeStat{GameType: s.GameType}
			byType[s.GameType] = st
		}
		st.AvgScore = (st.AvgScore*float64(st.Count) + float64(s.Score)) / float64(st.Count+1)
		st.Count++
	}
	var out []repositories.GameTypeStat
	for _, st := range byType {
		out = append(out, *st)
	}
	return out, nil
}

func (r *fakeSessionRepo) CountCompletedByUser(ctx context.Context, userID uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var n int64
	for _, s := range r.f.sessions {
		if s.UserID == userID && s.Status == models.SessionCompleted {
			n++
		}
	}
	return n, nil
}

// ===== USERS =====

type fakeUserRepo struct{ f *fakeRepository }

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if r.f.onUserGet != nil {
		r.f.onUserGet(id)
	}
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.f.users[id]; ok {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *user
	r.f.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) CountStudents(ctx context.Context, ids []uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if u, ok := r.f.users[id]; ok && u.Role == models.RoleStudent && u.IsActive {
			n++
		}
	}
	return n, nil
}

// ===== ACHIEVEMENTS =====

type fakeAchievementRepo struct{ f *fakeRepository }

func (r *fakeAchievementRepo) Create(ctx context.Context, achievement *models.Achievement) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.nextAchievementID++
	achievement.ID = r.f.nextAchievementID
	r.f.achievements[achievement.ID] = achievement
	return nil
}

func (r *fakeAchievementRepo) GetByID(ctx context.Context, id uint) (*models.Achievement, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	a, ok := r.f.achievements[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeAchievementRepo) ListActive(ctx context.Context) ([]*models.Achievement, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Achievement
	for id := uint(1); id <= r.f.nextAchievementID; id++ {
		if a, ok := r.f.achievements[id]; ok && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAchievementRepo) ListByCategory(ctx context.Context, category models.AchievementCategory, includeSecret bool) ([]*models.Achievement, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Achievement
	for id := uint(1); id <= r.f.nextAchievementID; id++ {
		a, ok := r.f.achievements[id]
		if !ok || !a.IsActive || a.Category != category {
			continue
		}
		if a.IsSecret && !includeSecret {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAchievementRepo) IncrementTotalEarned(ctx context.Context, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	a, ok := r.f.achievements[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.TotalEarned++
	return nil
}

// ===== REWARDS =====

type fakeRewardRepo struct{ f *fakeRepository }

func (r *fakeRewardRepo) Create(ctx context.Context, reward *models.Reward) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.nextRewardID++
	reward.ID = r.f.nextRewardID
	r.f.rewards[reward.ID] = reward
	return nil
}

func (r *fakeRewardRepo) GetByID(ctx context.Context, id uint) (*models.Reward, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	rw, ok := r.f.rewards[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rw, nil
}

func (r *fakeRewardRepo) ListActive(ctx context.Context) ([]*models.Reward, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Reward
	for id := uint(1); id <= r.f.nextRewardID; id++ {
		if rw, ok := r.f.rewards[id]; ok && rw.IsActive {
			out = append(out, rw)
		}
	}
	return out, nil
}

func (r *fakeRewardRepo) ListByType(ctx context.Context, rewardType models.RewardType, limit int) ([]*models.Reward, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Reward
	for id := uint(1); id <= r.f.nextRewardID; id++ {
		rw, ok := r.f.rewards[id]
		if !ok || !rw.IsActive || rw.Type != rewardType {
			continue
		}
		out = append(out, rw)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRewardRepo) IncrementTotalEarned(ctx context.Context, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	rw, ok := r.f.rewards[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rw.TotalEarned++
	return nil
}

// ===== TASKS =====

type fakeTaskRepo struct{ f *fakeRepository }

func (r *fakeTaskRepo) Create(ctx context.Context, task *models.Task) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.nextTaskID++
	task.ID = r.f.nextTaskID
	copied := *task
	r.f.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	copied.Assignments = append(copied.Assignments[:0:0], t.Assignments...)
	return &copied, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *models.Task) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.tasks[task.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *task
	r.f.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) ListByTeacher(ctx context.Context, teacherID uint, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Task
	for id := uint(1); id <= r.f.nextTaskID; id++ {
		t, ok := r.f.tasks[id]
		if !ok || t.TeacherID != teacherID {
			continue
		}
		if filters.ActiveOnly && !t.IsActive {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTaskRepo) ListByStudent(ctx context.Context, studentID uint, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Task
	for id := uint(1); id <= r.f.nextTaskID; id++ {
		t, ok := r.f.tasks[id]
		if !ok || t.Assignment(studentID) == nil {
			continue
		}
		if filters.ActiveOnly && !t.IsActive {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTaskRepo) ListDue(ctx context.Context, filters repositories.TaskFilters) ([]*models.Task, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	due := time.Now()
	if filters.DueBefore != nil {
		due = *filters.DueBefore
	}
	var out []*models.Task
	for id := uint(1); id <= r.f.nextTaskID; id++ {
		t, ok := r.f.tasks[id]
		if !ok || !t.IsActive || !t.DueDate.Before(due) {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}
