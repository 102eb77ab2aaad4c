package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/samber/lo"
	"github.com/vocaplay/game-service/internal/cache"
	"github.com/vocaplay/game-service/internal/events"
	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
	"github.com/vocaplay/game-service/internal/utils"
)

// noMoreHintsMessage is the defined terminal response for hint exhaustion; it
// is not a fault.
const noMoreHintsMessage = "No more hints available"

const leaderboardTTL = 5 * time.Minute
const statsTTL = time.Minute

type gameService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	publisher events.EventPublisher
	cache     cache.CacheService
	generator *sessionGenerator
	locks     *KeyedMutex
	rng       *rand.Rand
}

func NewGameService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, publisher events.EventPublisher, cacheService cache.CacheService, locks *KeyedMutex) GameService {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	return &gameService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		cache:     cacheService,
		generator: newSessionGenerator(repo.Words(), rng),
		locks:     locks,
		rng:       rng,
	}
}

// ===== CORE SESSION LIFECYCLE =====

func (s *gameService) Start(ctx context.Context, req *StartSessionRequest, userID uint) (*SessionResponse, error) {
	s.logger.Info("Starting game session",
		"user_id", userID,
		"game_type", req.GameType,
		"word_count", req.WordCount)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.repo.Users().GetByID(ctx, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// One active session per player; the client abandons before starting over.
	if _, err := s.repo.Sessions().GetActiveByUser(ctx, userID); err == nil {
		return nil, ErrActiveSessionExists
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}

	questions, err := s.generator.Generate(ctx, req.GameType, req.WordCount, repositories.WordFilters{
		Difficulty: req.Difficulty,
		Domain:     req.Domain,
		Period:     req.Period,
	})
	if err != nil {
		return nil, err
	}

	difficulty := models.DifficultyMedium
	if req.Difficulty != nil {
		difficulty = *req.Difficulty
	}

	session := &models.GameSession{
		UserID:         userID,
		GameType:       req.GameType,
		Status:         models.SessionActive,
		TotalQuestions: len(questions),
		Questions:      questions,
		Difficulty:     difficulty,
		StartedAt:      time.Now(),
	}
	if err := s.repo.Sessions().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.publish(ctx, events.NewSessionStartedEvent(session))

	s.logger.Info("Game session started",
		"session_id", session.ID,
		"user_id", userID,
		"total_questions", session.TotalQuestions)

	return s.buildSessionResponse(session), nil
}

func (s *gameService) SubmitAnswer(ctx context.Context, sessionID uint, req *SubmitAnswerRequest, userID uint) (*AnswerResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	s.locks.Lock(sessionKey(sessionID))
	defer s.locks.Unlock(sessionKey(sessionID))

	session, err := s.getOwnedSession(ctx, sessionID, userID, "submit_answer")
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, ErrSessionNotActive
	}
	if req.QuestionIndex < 0 || req.QuestionIndex >= session.TotalQuestions {
		return nil, ErrInvalidQuestionIndex
	}

	question := &session.Questions[req.QuestionIndex]
	if question.Answered() {
		return nil, ErrQuestionAlreadyAnswered
	}

	answer := req.Answer
	question.UserAnswer = &answer
	question.IsCorrect = answer == question.CorrectAnswer
	question.TimeSpent = req.TimeSpent

	if question.IsCorrect {
		session.CorrectCount++
	} else {
		session.WrongCount++
	}
	session.TimeSpent += req.TimeSpent
	// Running score during play is the base component only; bonuses land at
	// completion.
	session.Score = session.CorrectCount * 10

	if err := s.repo.Sessions().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return &AnswerResult{
		IsCorrect:     question.IsCorrect,
		CorrectAnswer: question.CorrectAnswer,
		Score:         session.Score,
		CorrectCount:  session.CorrectCount,
		WrongCount:    session.WrongCount,
	}, nil
}

func (s *gameService) UseHint(ctx context.Context, sessionID uint, req *UseHintRequest, userID uint) (*HintResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	s.locks.Lock(sessionKey(sessionID))
	defer s.locks.Unlock(sessionKey(sessionID))

	session, err := s.getOwnedSession(ctx, sessionID, userID, "use_hint")
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, ErrSessionNotActive
	}
	if session.GameType != models.GameHints {
		return nil, ErrHintsNotAvailable
	}
	if req.QuestionIndex < 0 || req.QuestionIndex >= session.TotalQuestions {
		return nil, ErrInvalidQuestionIndex
	}

	question := &session.Questions[req.QuestionIndex]
	word, err := s.repo.Words().GetByID(ctx, question.WordID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWordNotFound
		}
		return nil, fmt.Errorf("failed to get word: %w", err)
	}

	shown := lo.FilterMap(session.HintLog, func(h models.HintUse, _ int) (string, bool) {
		return h.Hint, h.WordID == question.WordID
	})
	remaining := lo.Without(wordHints(word), shown...)
	if len(remaining) == 0 {
		// Exhaustion is idempotent: no mutation, just the sentinel.
		return &HintResult{Hint: noMoreHintsMessage, Exhausted: true, HintsUsed: question.HintsUsed}, nil
	}

	hint := remaining[s.rng.IntN(len(remaining))]
	question.HintsUsed++
	session.HintLog = append(session.HintLog, models.HintUse{
		WordID: question.WordID,
		Hint:   hint,
		UsedAt: time.Now(),
	})

	if err := s.repo.Sessions().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return &HintResult{Hint: hint, HintsUsed: question.HintsUsed}, nil
}

func (s *gameService) Complete(ctx context.Context, sessionID uint, userID uint) (*CompletionResult, error) {
	// User before session ordering is fixed everywhere the two locks are
	// taken together.
	s.locks.Lock(userKey(userID))
	defer s.locks.Unlock(userKey(userID))
	s.locks.Lock(sessionKey(sessionID))
	defer s.locks.Unlock(sessionKey(sessionID))

	session, err := s.getOwnedSession(ctx, sessionID, userID, "complete")
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, ErrSessionNotActive
	}

	now := time.Now()
	session.Status = models.SessionCompleted
	session.CompletedAt = &now
	session.Score = session.FinalScore()
	session.PointsEarned = session.Score

	var (
		user            *models.User
		oldLevel        int
		newAchievements []EarnedAchievementResult
		newRewards      []EarnedRewardResult
	)

	// Session, word stats, progression, and eligibility commit or roll back
	// together.
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Sessions().Update(ctx, session); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		for _, q := range session.Questions {
			if !q.Answered() || q.WordID == 0 {
				continue
			}
			if err := tx.Words().RecordUsage(ctx, q.WordID, q.IsCorrect); err != nil {
				return fmt.Errorf("failed to record word usage: %w", err)
			}
		}

		var err error
		user, err = tx.Users().GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		oldLevel = user.Level

		RecordSessionOutcome(user, true)
		AddPoints(user, session.PointsEarned)

		newAchievements, err = EvaluateAchievements(ctx, tx, s.logger, user, session)
		if err != nil {
			return err
		}
		newRewards, err = EvaluateRewards(ctx, tx, s.logger, user, session)
		if err != nil {
			return err
		}

		if err := tx.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishCompletion(ctx, session, user, oldLevel, newAchievements, newRewards)
	s.invalidateAggregates(ctx, userID)

	s.logger.Info("Game session completed",
		"session_id", session.ID,
		"user_id", userID,
		"score", session.Score,
		"new_achievements", len(newAchievements),
		"new_rewards", len(newRewards))

	return &CompletionResult{
		Session:         s.buildSessionResponse(session),
		PointsEarned:    session.PointsEarned,
		NewAchievements: newAchievements,
		NewRewards:      newRewards,
		LeveledUp:       user.Level > oldLevel,
		Level:           user.Level,
		TotalPoints:     user.Points,
	}, nil
}

func (s *gameService) Abandon(ctx context.Context, sessionID uint, userID uint) (*SessionResponse, error) {
	s.locks.Lock(sessionKey(sessionID))
	defer s.locks.Unlock(sessionKey(sessionID))

	session, err := s.getOwnedSession(ctx, sessionID, userID, "abandon")
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, ErrSessionNotActive
	}

	// Abandonment is terminal with no scoring and no progression or
	// eligibility side effects.
	now := time.Now()
	session.Status = models.SessionAbandoned
	session.CompletedAt = &now

	if err := s.repo.Sessions().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	s.publish(ctx, events.NewSessionAbandonedEvent(session))

	s.logger.Info("Game session abandoned", "session_id", session.ID, "user_id", userID)

	return s.buildSessionResponse(session), nil
}

// ===== GET OPERATIONS =====

func (s *gameService) GetByID(ctx context.Context, sessionID uint, userID uint) (*SessionResponse, error) {
	session, err := s.getOwnedSession(ctx, sessionID, userID, "read")
	if err != nil {
		return nil, err
	}
	return s.buildSessionResponse(session), nil
}

func (s *gameService) GetActive(ctx context.Context, userID uint) (*SessionResponse, error) {
	session, err := s.repo.Sessions().GetActiveByUser(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return s.buildSessionResponse(session), nil
}

func (s *gameService) History(ctx context.Context, userID uint, filters repositories.SessionFilters) ([]*SessionResponse, int64, error) {
	filters.UserID = &userID

	sessions, total, err := s.repo.Sessions().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	responses := lo.Map(sessions, func(session *models.GameSession, _ int) *SessionResponse {
		return s.buildSessionResponse(session)
	})
	return responses, total, nil
}

// ===== AGGREGATES =====

func (s *gameService) Stats(ctx context.Context, userID uint) (*PlayerStats, error) {
	cacheKey := fmt.Sprintf("stats:user:%d", userID)
	var cached PlayerStats
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	user, err := s.repo.Users().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	byType, err := s.repo.Sessions().StatsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game stats: %w", err)
	}

	stats := &PlayerStats{
		UserID:           user.ID,
		Points:           user.Points,
		Level:            user.Level,
		TotalGamesPlayed: user.TotalGamesPlayed,
		CorrectAnswers:   user.CorrectAnswers,
		WrongAnswers:     user.WrongAnswers,
		Accuracy:         user.AccuracyPercent(),
		BonusHints:       user.BonusHints,
		Title:            user.Title,
		Achievements:     len(user.Achievements),
		Badges:           len(user.Badges),
		ByGameType:       byType,
	}

	if err := s.cache.Set(ctx, cacheKey, stats, statsTTL); err != nil {
		s.logger.Warn("Failed to cache player stats", "user_id", userID, "error", err)
	}
	return stats, nil
}

func (s *gameService) Leaderboard(ctx context.Context, gameType *models.GameType, limit int) ([]repositories.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	scope := "all"
	if gameType != nil {
		scope = string(*gameType)
	}
	cacheKey := fmt.Sprintf("leaderboard:%s:%d", scope, limit)

	var cached []repositories.LeaderboardEntry
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	entries, err := s.repo.Sessions().Leaderboard(ctx, gameType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}

	if err := s.cache.Set(ctx, cacheKey, entries, leaderboardTTL); err != nil {
		s.logger.Warn("Failed to cache leaderboard", "error", err)
	}
	return entries, nil
}

// ===== HELPERS =====

func (s *gameService) getOwnedSession(ctx context.Context, sessionID, userID uint, action string) (*models.GameSession, error) {
	session, err := s.repo.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != userID {
		return nil, NewPermissionError(userID, sessionID, "session", action, "not owned by user")
	}
	return session, nil
}

// wordHints is the fixed candidate set for a hints-game word, always exactly
// four entries.
func wordHints(w *models.Word) []string {
	return []string{
		fmt.Sprintf("This word relates to %s", w.Domain),
		fmt.Sprintf("It dates from the %s period", w.Period),
		fmt.Sprintf("Modern equivalent: %s", w.ModernEquivalent),
		fmt.Sprintf("Usage status: %s", w.StatusTag),
	}
}

// buildSessionResponse renders a session for the client. Correct answers,
// match pairings, and per-question verdicts stay hidden until the question is
// answered or the session is terminal.
func (s *gameService) buildSessionResponse(session *models.GameSession) *SessionResponse {
	terminal := !session.IsActive()

	questions := make([]QuestionView, len(session.Questions))
	for i, q := range session.Questions {
		view := QuestionView{
			WordID:        q.WordID,
			Prompt:        q.Prompt,
			Options:       q.Options,
			UserAnswer:    q.UserAnswer,
			TimeSpent:     q.TimeSpent,
			HintsUsed:     q.HintsUsed,
			WordTokens:    q.WordTokens,
			MeaningTokens: q.MeaningTokens,
		}
		if terminal || q.Answered() {
			correct := q.IsCorrect
			view.IsCorrect = &correct
		}
		if terminal {
			view.CorrectAnswer = q.CorrectAnswer
			view.CorrectPairs = q.CorrectPairs
		}
		questions[i] = view
	}

	return &SessionResponse{
		ID:             session.ID,
		UserID:         session.UserID,
		GameType:       session.GameType,
		Status:         session.Status,
		Score:          session.Score,
		TotalQuestions: session.TotalQuestions,
		CorrectCount:   session.CorrectCount,
		WrongCount:     session.WrongCount,
		TimeSpent:      session.TimeSpent,
		Difficulty:     session.Difficulty,
		PointsEarned:   session.PointsEarned,
		Questions:      questions,
		StartedAt:      session.StartedAt,
		CompletedAt:    session.CompletedAt,
	}
}

func (s *gameService) publish(ctx context.Context, event *events.GameEvent) {
	if err := s.publisher.PublishGameEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func (s *gameService) publishCompletion(ctx context.Context, session *models.GameSession, user *models.User, oldLevel int, achievements []EarnedAchievementResult, rewards []EarnedRewardResult) {
	s.publish(ctx, events.NewSessionCompletedEvent(session))
	now := time.Now()
	for _, a := range achievements {
		s.publish(ctx, events.NewAchievementEarnedEvent(user.ID, a.Achievement, now))
	}
	for _, r := range rewards {
		s.publish(ctx, events.NewRewardEarnedEvent(user.ID, r.Reward, now))
	}
	if user.Level > oldLevel {
		s.publish(ctx, events.NewLevelUpEvent(user.ID, oldLevel, user.Level, user.Points))
	}
}

func (s *gameService) invalidateAggregates(ctx context.Context, userID uint) {
	if err := s.cache.DeletePattern(ctx, "leaderboard:*"); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", "error", err)
	}
	if err := s.cache.Delete(ctx, fmt.Sprintf("stats:user:%d", userID)); err != nil {
		s.logger.Warn("Failed to invalidate stats cache", "user_id", userID, "error", err)
	}
}
