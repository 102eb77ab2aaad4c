package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
	"github.com/vocaplay/game-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

func newWordService(f *fakeRepository) WordService {
	return NewWordService(f, discardLogger(), utils.NewValidator())
}

func validWordRequest(text string) *CreateWordRequest {
	return &CreateWordRequest{
		Text:           text,
		MeaningPrimary: "a meaning",
		Domain:         models.DomainTrade,
		Period:         models.PeriodClassical,
	}
}

func TestWordService_Create(t *testing.T) {
	f := newFakeRepository()
	svc := newWordService(f)
	ctx := context.Background()

	word, err := svc.Create(ctx, validWordRequest("okka"), 5)
	require.NoError(t, err)
	assert.NotZero(t, word.ID)
	assert.True(t, word.IsActive)
	assert.Equal(t, models.DifficultyMedium, word.Difficulty, "difficulty defaults when omitted")
	assert.Equal(t, uint(5), word.AddedBy)
}

func TestWordService_Create_DuplicateText(t *testing.T) {
	f := newFakeRepository()
	svc := newWordService(f)
	ctx := context.Background()

	_, err := svc.Create(ctx, validWordRequest("okka"), 5)
	require.NoError(t, err)

	_, err = svc.Create(ctx, validWordRequest("Okka"), 5)
	assert.ErrorIs(t, err, ErrWordDuplicateText)
}

func TestWordService_Create_Invalid(t *testing.T) {
	f := newFakeRepository()
	svc := newWordService(f)

	req := validWordRequest("")
	_, err := svc.Create(context.Background(), req, 5)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestWordService_Update(t *testing.T) {
	f := newFakeRepository()
	svc := newWordService(f)
	ctx := context.Background()

	word, err := svc.Create(ctx, validWordRequest("okka"), 5)
	require.NoError(t, err)

	meaning := "a unit of weight"
	domain := models.DomainMeasurement
	inactive := false
	updated, err := svc.Update(ctx, word.ID, &UpdateWordRequest{
		MeaningPrimary: &meaning,
		Domain:         &domain,
		IsActive:       &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, meaning, updated.MeaningPrimary)
	assert.Equal(t, domain, updated.Domain)
	assert.False(t, updated.IsActive)
	// Untouched fields keep their values.
	assert.Equal(t, models.PeriodClassical, updated.Period)

	_, err = svc.Update(ctx, 999, &UpdateWordRequest{MeaningPrimary: &meaning})
	assert.ErrorIs(t, err, ErrWordNotFound)
}

func TestWordService_Deactivate(t *testing.T) {
	f := newFakeRepository()
	svc := newWordService(f)
	ctx := context.Background()

	word, err := svc.Create(ctx, validWordRequest("okka"), 5)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, word.ID))

	stored, err := svc.GetByID(ctx, word.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	assert.ErrorIs(t, svc.Deactivate(ctx, 999), ErrWordNotFound)
}

// buildWorkbook writes a header row plus the given data rows into an xlsx
// blob.
func buildWorkbook(t *testing.T, headers []string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestWordService_ImportXLSX(t *testing.T) {
	f := newFakeRepository()
	svc := newWordService(f)

	headers := []string{"text", "meaning_primary", "domain", "period", "difficulty"}
	period := string(models.PeriodClassical)
	buf := buildWorkbook(t, headers, [][]interface{}{
		{"okka", "a unit of weight", "Measurement", period, "Easy"},
		{"arshin", "a unit of length", "Measurement", period, ""},
		{"", "missing text", "Measurement", period, ""}, // invalid row
	})

	result, err := svc.ImportXLSX(context.Background(), buf, 5)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "row 4")

	words, total, err := svc.List(context.Background(), repositories.WordFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, models.DifficultyEasy, words[0].Difficulty)
	assert.Equal(t, models.DifficultyMedium, words[1].Difficulty, "blank difficulty falls back to the default")
}

func TestWordService_ImportXLSX_MissingColumn(t *testing.T) {
	f := newFakeRepository()
	svc := newWordService(f)

	buf := buildWorkbook(t, []string{"text", "meaning_primary", "domain"}, [][]interface{}{
		{"okka", "a unit of weight", "Measurement"},
	})

	_, err := svc.ImportXLSX(context.Background(), buf, 5)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "period")
}

func TestWordService_ImportXLSX_NoDataRows(t *testing.T) {
	f := newFakeRepository()
	svc := newWordService(f)

	buf := buildWorkbook(t, []string{"text", "meaning_primary", "domain", "period"}, nil)

	_, err := svc.ImportXLSX(context.Background(), buf, 5)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestWordService_ExportImportRoundTrip(t *testing.T) {
	source := newFakeRepository()
	seedWords(source, 3)
	exporter := newWordService(source)

	var buf bytes.Buffer
	require.NoError(t, exporter.ExportXLSX(context.Background(), repositories.WordFilters{}, &buf))

	target := newFakeRepository()
	importer := newWordService(target)

	result, err := importer.ImportXLSX(context.Background(), &buf, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Zero(t, result.Skipped)

	words, total, err := importer.List(context.Background(), repositories.WordFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	for _, w := range words {
		assert.Equal(t, uint(7), w.AddedBy)
		assert.Equal(t, models.DomainTrade, w.Domain)
		assert.True(t, w.IsActive)
	}
}
