package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
	"github.com/vocaplay/game-service/internal/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type wordService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
}

func NewWordService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) WordService {
	return &wordService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== CATALOG OPERATIONS =====

func (s *wordService) Create(ctx context.Context, req *CreateWordRequest, addedBy uint) (*models.Word, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	word := &models.Word{
		Text:             req.Text,
		MeaningPrimary:   req.MeaningPrimary,
		MeaningSecondary: req.MeaningSecondary,
		Domain:           req.Domain,
		Period:           req.Period,
		ModernEquivalent: req.ModernEquivalent,
		StatusTag:        req.StatusTag,
		Notes:            req.Notes,
		Difficulty:       orDefault(req.Difficulty, models.DifficultyMedium),
		IsActive:         true,
		AddedBy:          addedBy,
	}
	if err := s.repo.Words().Create(ctx, word); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrWordDuplicateText
		}
		return nil, fmt.Errorf("failed to create word: %w", err)
	}

	s.logger.Info("Word created", "word_id", word.ID, "text", word.Text, "added_by", addedBy)
	return word, nil
}

func (s *wordService) GetByID(ctx context.Context, id uint) (*models.Word, error) {
	word, err := s.repo.Words().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWordNotFound
		}
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	return word, nil
}

func (s *wordService) Update(ctx context.Context, id uint, req *UpdateWordRequest) (*models.Word, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	word, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.MeaningPrimary != nil {
		word.MeaningPrimary = *req.MeaningPrimary
	}
	if req.MeaningSecondary != nil {
		word.MeaningSecondary = *req.MeaningSecondary
	}
	if req.Domain != nil {
		word.Domain = *req.Domain
	}
	if req.Period != nil {
		word.Period = *req.Period
	}
	if req.ModernEquivalent != nil {
		word.ModernEquivalent = *req.ModernEquivalent
	}
	if req.StatusTag != nil {
		word.StatusTag = *req.StatusTag
	}
	if req.Notes != nil {
		word.Notes = *req.Notes
	}
	if req.Difficulty != nil {
		word.Difficulty = *req.Difficulty
	}
	if req.IsActive != nil {
		word.IsActive = *req.IsActive
	}

	if err := s.repo.Words().Update(ctx, word); err != nil {
		return nil, fmt.Errorf("failed to update word: %w", err)
	}
	return word, nil
}

// Deactivate retires a word from new sessions. Words are never hard-deleted
// so historical sessions keep resolving.
func (s *wordService) Deactivate(ctx context.Context, id uint) error {
	word, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	word.IsActive = false
	if err := s.repo.Words().Update(ctx, word); err != nil {
		return fmt.Errorf("failed to deactivate word: %w", err)
	}

	s.logger.Info("Word deactivated", "word_id", id, "text", word.Text)
	return nil
}

func (s *wordService) List(ctx context.Context, filters repositories.WordFilters) ([]*models.Word, int64, error) {
	words, total, err := s.repo.Words().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list words: %w", err)
	}
	return words, total, nil
}

// ===== BULK IMPORT / EXPORT =====

var xlsxColumns = []string{
	"text", "meaning_primary", "meaning_secondary", "domain", "period",
	"modern_equivalent", "status_tag", "notes", "difficulty",
}

// ImportXLSX loads catalog entries from a spreadsheet. Rows that fail
// validation are skipped and reported; valid rows are written in one batch.
func (s *wordService) ImportXLSX(ctx context.Context, r io.Reader, addedBy uint) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "spreadsheet has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "spreadsheet must have a header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{"text", "meaning_primary", "domain", "period"} {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	result := &ImportResult{}
	var words []*models.Word
	for rowIndex, row := range rows[1:] {
		word, err := s.parseRow(row, headerMap, addedBy)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowIndex+2, err))
			continue
		}
		words = append(words, word)
	}

	if len(words) > 0 {
		if err := s.repo.Words().CreateBatch(ctx, words); err != nil {
			return nil, fmt.Errorf("failed to save imported words: %w", err)
		}
	}
	result.Imported = len(words)

	s.logger.Info("Word import completed",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"added_by", addedBy)
	return result, nil
}

func (s *wordService) parseRow(row []string, headerMap map[string]int, addedBy uint) (*models.Word, error) {
	cell := func(name string) string {
		idx, ok := headerMap[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	req := &CreateWordRequest{
		Text:             cell("text"),
		MeaningPrimary:   cell("meaning_primary"),
		MeaningSecondary: cell("meaning_secondary"),
		Domain:           models.Domain(cell("domain")),
		Period:           models.Period(cell("period")),
		ModernEquivalent: cell("modern_equivalent"),
		StatusTag:        models.StatusTag(cell("status_tag")),
		Notes:            cell("notes"),
		Difficulty:       models.DifficultyLevel(cell("difficulty")),
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	return &models.Word{
		Text:             req.Text,
		MeaningPrimary:   req.MeaningPrimary,
		MeaningSecondary: req.MeaningSecondary,
		Domain:           req.Domain,
		Period:           req.Period,
		ModernEquivalent: req.ModernEquivalent,
		StatusTag:        req.StatusTag,
		Notes:            req.Notes,
		Difficulty:       orDefault(req.Difficulty, models.DifficultyMedium),
		IsActive:         true,
		AddedBy:          addedBy,
	}, nil
}

// ExportXLSX streams the filtered catalog as a spreadsheet, usage statistics
// included.
func (s *wordService) ExportXLSX(ctx context.Context, filters repositories.WordFilters, w io.Writer) error {
	words, _, err := s.repo.Words().List(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list words: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := append(append([]string{}, xlsxColumns...), "times_used", "correct_count", "wrong_count")
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, word := range words {
		values := []interface{}{
			word.Text, word.MeaningPrimary, word.MeaningSecondary,
			string(word.Domain), string(word.Period), word.ModernEquivalent,
			string(word.StatusTag), word.Notes, string(word.Difficulty),
			word.TimesUsed, word.CorrectCount, word.WrongCount,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}

	s.logger.Info("Word export completed", "words", len(words))
	return nil
}
