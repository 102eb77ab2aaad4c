package services

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vocaplay/game-service/internal/cache"
	"github.com/vocaplay/game-service/internal/events"
	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/utils"
)

type gameServiceFixture struct {
	repo      *fakeRepository
	service   GameService
	publisher *events.MockEventPublisher
}

func newGameServiceFixture(t *testing.T) *gameServiceFixture {
	t.Helper()
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(discardLogger())
	service := NewGameService(repo, discardLogger(), utils.NewValidator(), publisher, cache.NoopCache{}, NewKeyedMutex())
	return &gameServiceFixture{repo: repo, service: service, publisher: publisher}
}

func (fx *gameServiceFixture) seedPlayer(id uint) *models.User {
	return fx.repo.addUser(&models.User{
		ID:       id,
		Username: "player",
		Email:    "player@example.com",
		Role:     models.RoleStudent,
		IsActive: true,
		Level:    1,
	})
}

func TestGameService_Start(t *testing.T) {
	fx := newGameServiceFixture(t)
	fx.seedPlayer(1)
	seedWords(fx.repo, 8)
	ctx := context.Background()

	session, err := fx.service.Start(ctx, &StartSessionRequest{
		GameType:  models.GameMCQ,
		WordCount: 5,
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, models.SessionActive, session.Status)
	assert.Equal(t, 5, session.TotalQuestions)
	assert.Equal(t, uint(1), session.UserID)
	for _, q := range session.Questions {
		assert.Empty(t, q.CorrectAnswer, "answers stay hidden while active")
		assert.Nil(t, q.IsCorrect)
		assert.Len(t, q.Options, 4)
	}

	types := lo.Map(fx.publisher.GetPublishedEvents(), func(e events.GameEvent, _ int) events.EventType {
		return e.Type
	})
	assert.Contains(t, types, events.EventSessionStarted)
}

func TestGameService_Start_RejectsSecondActiveSession(t *testing.T) {
	fx := newGameServiceFixture(t)
	fx.seedPlayer(1)
	seedWords(fx.repo, 8)
	ctx := context.Background()

	_, err := fx.service.Start(ctx, &StartSessionRequest{GameType: models.GameHints, WordCount: 3}, 1)
	require.NoError(t, err)

	_, err = fx.service.Start(ctx, &StartSessionRequest{GameType: models.GameMCQ, WordCount: 3}, 1)
	assert.ErrorIs(t, err, ErrActiveSessionExists)
}

func TestGameService_Start_UnknownUser(t *testing.T) {
	fx := newGameServiceFixture(t)
	seedWords(fx.repo, 8)

	_, err := fx.service.Start(context.Background(), &StartSessionRequest{GameType: models.GameMCQ, WordCount: 3}, 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGameService_SubmitAnswer(t *testing.T) {
	fx := newGameServiceFixture(t)
	fx.seedPlayer(1)
	seedWords(fx.repo, 8)
	ctx := context.Background()

	resp, err := fx.service.Start(ctx, &StartSessionRequest{GameType: models.GameMCQ, WordCount: 5}, 1)
	require.NoError(t, err)
	stored := fx.repo.getSession(resp.ID)
	require.NotNil(t, stored)

	// Correct answer.
	result, err := fx.service.SubmitAnswer(ctx, resp.ID, &SubmitAnswerRequest{
		QuestionIndex: 0,
		Answer:        stored.Questions[0].CorrectAnswer,
		TimeSpent:     12,
	}, 1)
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, 10, result.Score)
	assert.Equal(t, 1, result.CorrectCount)

	// Wrong answer.
	result, err = fx.service.SubmitAnswer(ctx, resp.ID, &SubmitAnswerRequest{
		QuestionIndex: 1,
		Answer:        "definitely wrong",
		TimeSpent:     7,
	}, 1)
	require.NoError(t, err)
	assert.False(t, result.IsCorrect)
	assert.Equal(t, stored.Questions[1].CorrectAnswer, result.CorrectAnswer)
	assert.Equal(t, 10, result.Score)
	assert.Equal(t, 1, result.WrongCount)

	// Resubmission of an answered question is rejected.
	_, err = fx.service.SubmitAnswer(ctx, resp.ID, &SubmitAnswerRequest{
		QuestionIndex: 0,
		Answer:        "again",
	}, 1)
	assert.ErrorIs(t, err, ErrQuestionAlreadyAnswered)

	// Out-of-range index.
	_, err = fx.service.SubmitAnswer(ctx, resp.ID, &SubmitAnswerRequest{
		QuestionIndex: 99,
		Answer:        "x",
	}, 1)
	assert.ErrorIs(t, err, ErrInvalidQuestionIndex)
}

func TestGameService_Complete_ScoringAndProgression(t *testing.T) {
	fx := newGameServiceFixture(t)
	fx.seedPlayer(1)
	seedWords(fx.repo, 8)
	ctx := context.Background()

	resp, err := fx.service.Start(ctx, &StartSessionRequest{GameType: models.GameMCQ, WordCount: 5}, 1)
	require.NoError(t, err)
	stored := fx.repo.getSession(resp.ID)

	// Three correct, two wrong, 20 seconds per question.
	for i := 0; i < 5; i++ {
		answer := "wrong"
		if i < 3 {
			answer = stored.Questions[i].CorrectAnswer
		}
		_, err := fx.service.SubmitAnswer(ctx, resp.ID, &SubmitAnswerRequest{
			QuestionIndex: i,
			Answer:        answer,
			TimeSpent:     20,
		}, 1)
		require.NoError(t, err)
	}

	result, err := fx.service.Complete(ctx, resp.ID, 1)
	require.NoError(t, err)

	// base 3*10 + time bonus (300-100)*0.1 + accuracy 3/5*50 = 80.
	assert.Equal(t, 80, result.Session.Score)
	assert.Equal(t, 80, result.PointsEarned)
	assert.Equal(t, 80, result.TotalPoints)
	assert.False(t, result.LeveledUp)
	assert.Equal(t, 1, result.Level)
	assert.Equal(t, models.SessionCompleted, result.Session.Status)

	// Terminal responses reveal the answers.
	for _, q := range result.Session.Questions {
		assert.NotEmpty(t, q.CorrectAnswer)
	}

	user := fx.repo.getUser(1)
	assert.Equal(t, 80, user.Points)
	assert.Equal(t, 1, user.TotalGamesPlayed)

	// Word usage counters moved once per answered question.
	var used int
	for _, q := range stored.Questions {
		w, err := fx.repo.Words().GetByID(ctx, q.WordID)
		require.NoError(t, err)
		used += w.TimesUsed
	}
	assert.Equal(t, 5, used)

	types := lo.Map(fx.publisher.GetPublishedEvents(), func(e events.GameEvent, _ int) events.EventType {
		return e.Type
	})
	assert.Contains(t, types, events.EventSessionCompleted)

	// Completing twice is rejected.
	_, err = fx.service.Complete(ctx, resp.ID, 1)
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestGameService_Complete_LevelUp(t *testing.T) {
	fx := newGameServiceFixture(t)
	user := fx.seedPlayer(1)
	user.Points = 90
	seedWords(fx.repo, 8)
	ctx := context.Background()

	resp, err := fx.service.Start(ctx, &StartSessionRequest{GameType: models.GameHints, WordCount: 3}, 1)
	require.NoError(t, err)
	stored := fx.repo.getSession(resp.ID)

	for i := range stored.Questions {
		_, err := fx.service.SubmitAnswer(ctx, resp.ID, &SubmitAnswerRequest{
			QuestionIndex: i,
			Answer:        stored.Questions[i].CorrectAnswer,
			TimeSpent:     10,
		}, 1)
		require.NoError(t, err)
	}

	result, err := fx.service.Complete(ctx, resp.ID, 1)
	require.NoError(t, err)
	assert.True(t, result.LeveledUp)
	assert.Greater(t, result.Level, 1)

	types := lo.Map(fx.publisher.GetPublishedEvents(), func(e events.GameEvent, _ int) events.EventType {
		return e.Type
	})
	assert.Contains(t, types, events.EventLevelUp)
}

func TestGameService_Abandon_NoProgression(t *testing.T) {
	fx := newGameServiceFixture(t)
	fx.seedPlayer(1)
	seedWords(fx.repo, 8)
	ctx := context.Background()

	resp, err := fx.service.Start(ctx, &StartSessionRequest{GameType: models.GameJumbled, WordCount: 3}, 1)
	require.NoError(t, err)

	stored := fx.repo.getSession(resp.ID)
	_, err = fx.service.SubmitAnswer(ctx, resp.ID, &SubmitAnswerRequest{
		QuestionIndex: 0,
		Answer:        stored.Questions[0].CorrectAnswer,
		TimeSpent:     5,
	}, 1)
	require.NoError(t, err)

	abandoned, err := fx.service.Abandon(ctx, resp.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAbandoned, abandoned.Status)
	assert.Zero(t, abandoned.PointsEarned)

	user := fx.repo.getUser(1)
	assert.Zero(t, user.Points, "abandonment never awards points")
	assert.Zero(t, user.TotalGamesPlayed)

	// Terminal: no further play, no completion.
	_, err = fx.service.SubmitAnswer(ctx, resp.ID, &SubmitAnswerRequest{QuestionIndex: 1, Answer: "x"}, 1)
	assert.ErrorIs(t, err, ErrSessionNotActive)
	_, err = fx.service.Complete(ctx, resp.ID, 1)
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestGameService_UseHint(t *testing.T) {
	fx := newGameServiceFixture(t)
	fx.seedPlayer(1)
	word := fx.repo.addWord(&models.Word{
		Text:             "arshin",
		MeaningPrimary:   "a unit of length",
		Domain:           models.DomainMeasurement,
		Period:           models.PeriodClassical,
		ModernEquivalent: "meter",
		StatusTag:        models.StatusHistorical,
		IsActive:         true,
	})
	ctx := context.Background()

	session := &models.GameSession{
		UserID:         1,
		GameType:       models.GameHints,
		Status:         models.SessionActive,
		TotalQuestions: 1,
		Questions: []models.Question{
			{WordID: word.ID, Prompt: "Guess the word from its hints", CorrectAnswer: word.Text},
		},
		StartedAt: time.Now(),
	}
	require.NoError(t, fx.repo.Sessions().Create(ctx, session))

	seen := make(map[string]bool)
	for i := 1; i <= 4; i++ {
		result, err := fx.service.UseHint(ctx, session.ID, &UseHintRequest{QuestionIndex: 0}, 1)
		require.NoError(t, err)
		assert.False(t, result.Exhausted)
		assert.Equal(t, i, result.HintsUsed)
		assert.False(t, seen[result.Hint], "hint %q repeated", result.Hint)
		seen[result.Hint] = true
	}

	// Fifth request returns the sentinel without mutating anything.
	result, err := fx.service.UseHint(ctx, session.ID, &UseHintRequest{QuestionIndex: 0}, 1)
	require.NoError(t, err)
	assert.True(t, result.Exhausted)
	assert.Equal(t, "No more hints available", result.Hint)
	assert.Equal(t, 4, result.HintsUsed)
}

func TestGameService_UseHint_WrongGameType(t *testing.T) {
	fx := newGameServiceFixture(t)
	fx.seedPlayer(1)
	seedWords(fx.repo, 8)
	ctx := context.Background()

	resp, err := fx.service.Start(ctx, &StartSessionRequest{GameType: models.GameMCQ, WordCount: 3}, 1)
	require.NoError(t, err)

	_, err = fx.service.UseHint(ctx, resp.ID, &UseHintRequest{QuestionIndex: 0}, 1)
	assert.ErrorIs(t, err, ErrHintsNotAvailable)
}

func TestGameService_OwnershipEnforced(t *testing.T) {
	fx := newGameServiceFixture(t)
	fx.seedPlayer(1)
	fx.repo.addUser(&models.User{ID: 2, Username: "other", Email: "other@example.com", Role: models.RoleStudent, IsActive: true})
	seedWords(fx.repo, 8)
	ctx := context.Background()

	resp, err := fx.service.Start(ctx, &StartSessionRequest{GameType: models.GameMCQ, WordCount: 3}, 1)
	require.NoError(t, err)

	_, err = fx.service.GetByID(ctx, resp.ID, 2)
	assert.True(t, IsUnauthorized(err), "foreign session read is a permission error")

	_, err = fx.service.SubmitAnswer(ctx, resp.ID, &SubmitAnswerRequest{QuestionIndex: 0, Answer: "x"}, 2)
	assert.True(t, IsUnauthorized(err))
}

func TestGameService_StatsAndLeaderboard(t *testing.T) {
	fx := newGameServiceFixture(t)
	fx.seedPlayer(1)
	seedWords(fx.repo, 8)
	ctx := context.Background()

	resp, err := fx.service.Start(ctx, &StartSessionRequest{GameType: models.GameMCQ, WordCount: 3}, 1)
	require.NoError(t, err)
	stored := fx.repo.getSession(resp.ID)
	for i := range stored.Questions {
		_, err := fx.service.SubmitAnswer(ctx, resp.ID, &SubmitAnswerRequest{
			QuestionIndex: i,
			Answer:        stored.Questions[i].CorrectAnswer,
			TimeSpent:     10,
		}, 1)
		require.NoError(t, err)
	}
	_, err = fx.service.Complete(ctx, resp.ID, 1)
	require.NoError(t, err)

	stats, err := fx.service.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), stats.UserID)
	assert.Positive(t, stats.Points)
	assert.Equal(t, 1, stats.TotalGamesPlayed)
	require.Len(t, stats.ByGameType, 1)
	assert.Equal(t, models.GameMCQ, stats.ByGameType[0].GameType)

	entries, err := fx.service.Leaderboard(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(1), entries[0].UserID)
	assert.Equal(t, stats.Points, entries[0].TotalScore, "leaderboard totals completed session scores")
}
