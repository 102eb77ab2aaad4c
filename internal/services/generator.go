package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
)

// mcqOptionCount is the fixed option count for multiple-choice questions: the
// correct meaning plus three distractors.
const mcqOptionCount = 4

// maxDistractorAttempts bounds the per-distractor resampling loop so a
// catalog full of identical meanings fails instead of spinning.
const maxDistractorAttempts = 25

// sessionGenerator builds question sets for new sessions. All randomness runs
// through one source so tests can seed it.
type sessionGenerator struct {
	words repositories.WordRepository
	rng   *rand.Rand
}

func newSessionGenerator(words repositories.WordRepository, rng *rand.Rand) *sessionGenerator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &sessionGenerator{words: words, rng: rng}
}

// Generate samples the word pool and builds the per-type question list. It
// fails with ErrInsufficientWords when the filtered pool is smaller than the
// requested count; no partial sessions are started.
func (g *sessionGenerator) Generate(ctx context.Context, gameType models.GameType, count int, filters repositories.WordFilters) ([]models.Question, error) {
	filters.ActiveOnly = true

	pool, err := g.words.CountMatching(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count word pool: %w", err)
	}
	if pool < int64(count) {
		return nil, ErrInsufficientWords
	}

	words, err := g.words.Sample(ctx, count, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to sample words: %w", err)
	}
	if len(words) < count {
		return nil, ErrInsufficientWords
	}

	switch gameType {
	case models.GameMatch:
		return []models.Question{g.buildMatchQuestion(words)}, nil
	case models.GameMCQ:
		return g.buildMCQQuestions(ctx, words)
	case models.GameHints:
		return lo.Map(words, func(w *models.Word, _ int) models.Question {
			return g.buildHintsQuestion(w)
		}), nil
	case models.GameJumbled:
		return lo.Map(words, func(w *models.Word, _ int) models.Question {
			return g.buildJumbledQuestion(w)
		}), nil
	default:
		return nil, ErrInvalidGameType
	}
}

// buildMatchQuestion returns the single aggregate question for a match game:
// two independently shuffled token lists plus the ground-truth pairing keyed
// by decimal word id.
func (g *sessionGenerator) buildMatchQuestion(words []*models.Word) models.Question {
	wordTokens := lo.Map(words, func(w *models.Word, _ int) models.MatchToken {
		return models.MatchToken{WordID: w.ID, Text: w.Text}
	})
	meaningTokens := lo.Map(words, func(w *models.Word, _ int) models.MatchToken {
		return models.MatchToken{WordID: w.ID, Text: w.MeaningPrimary}
	})
	g.rng.Shuffle(len(wordTokens), func(i, j int) {
		wordTokens[i], wordTokens[j] = wordTokens[j], wordTokens[i]
	})
	g.rng.Shuffle(len(meaningTokens), func(i, j int) {
		meaningTokens[i], meaningTokens[j] = meaningTokens[j], meaningTokens[i]
	})

	pairs := make(map[string]string, len(words))
	for _, w := range words {
		pairs[fmt.Sprintf("%d", w.ID)] = w.MeaningPrimary
	}

	return models.Question{
		Prompt:        "Match each word to its meaning",
		CorrectAnswer: MatchAnswerString(pairs),
		WordTokens:    wordTokens,
		MeaningTokens: meaningTokens,
		CorrectPairs:  pairs,
	}
}

// MatchAnswerString renders a pairing map in the canonical submission format:
// "id:meaning" entries sorted by key and joined with "|". Clients submit their
// pairing in the same form so answer checking stays a string comparison.
func MatchAnswerString(pairs map[string]string) string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ":" + pairs[k]
	}
	return strings.Join(parts, "|")
}

func (g *sessionGenerator) buildMCQQuestions(ctx context.Context, words []*models.Word) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(words))
	for _, w := range words {
		distractors, err := g.drawDistractors(ctx, w)
		if err != nil {
			return nil, err
		}

		options := append([]string{w.MeaningPrimary}, distractors...)
		g.rng.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})

		questions = append(questions, models.Question{
			WordID:        w.ID,
			Prompt:        fmt.Sprintf("What does %q mean?", w.Text),
			Options:       options,
			CorrectAnswer: w.MeaningPrimary,
			WordDomain:    w.Domain,
			WordPeriod:    w.Period,
		})
	}
	return questions, nil
}

// drawDistractors repeatedly samples one random other active word until its
// meaning differs from the correct one and from already-chosen distractors.
func (g *sessionGenerator) drawDistractors(ctx context.Context, word *models.Word) ([]string, error) {
	distractors := make([]string, 0, mcqOptionCount-1)
	attempts := 0
	for len(distractors) < mcqOptionCount-1 {
		if attempts >= maxDistractorAttempts {
			return nil, ErrInsufficientWords
		}
		attempts++

		candidates, err := g.words.SampleExcluding(ctx, 1, []uint{word.ID}, repositories.WordFilters{ActiveOnly: true})
		if err != nil {
			return nil, fmt.Errorf("failed to sample distractor: %w", err)
		}
		if len(candidates) == 0 {
			return nil, ErrInsufficientWords
		}

		meaning := candidates[0].MeaningPrimary
		if meaning == word.MeaningPrimary || lo.Contains(distractors, meaning) {
			continue
		}
		distractors = append(distractors, meaning)
	}
	return distractors, nil
}

func (g *sessionGenerator) buildHintsQuestion(w *models.Word) models.Question {
	prompt := w.Notes
	if prompt == "" {
		prompt = "Guess the word from its hints"
	}
	return models.Question{
		WordID:        w.ID,
		Prompt:        prompt,
		CorrectAnswer: w.Text,
		WordDomain:    w.Domain,
		WordPeriod:    w.Period,
	}
}

func (g *sessionGenerator) buildJumbledQuestion(w *models.Word) models.Question {
	return models.Question{
		WordID:        w.ID,
		Prompt:        g.jumble(w.Text),
		CorrectAnswer: w.Text,
		WordDomain:    w.Domain,
		WordPeriod:    w.Period,
	}
}

// jumble returns a random permutation of the word's characters, retrying so
// the result differs from the original whenever the word has two distinct
// characters.
func (g *sessionGenerator) jumble(text string) string {
	runes := []rune(text)
	if len(runes) < 2 {
		return text
	}
	for attempt := 0; attempt < 10; attempt++ {
		g.rng.Shuffle(len(runes), func(i, j int) {
			runes[i], runes[j] = runes[j], runes[i]
		})
		if string(runes) != text {
			break
		}
	}
	return string(runes)
}
