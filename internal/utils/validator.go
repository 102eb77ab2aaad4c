package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/vocaplay/game-service/internal/errors"
	"github.com/vocaplay/game-service/internal/models"
)

// Validator wraps the struct validator with the service's custom rules
// registered.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate checks struct tags and converts failures to the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// Custom validation functions

func ValidateGameType(fl validator.FieldLevel) bool {
	validTypes := []models.GameType{
		models.GameMatch,
		models.GameMCQ,
		models.GameHints,
		models.GameJumbled,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func ValidateDifficultyLevel(fl validator.FieldLevel) bool {
	validLevels := []models.DifficultyLevel{
		models.DifficultyEasy,
		models.DifficultyMedium,
		models.DifficultyHard,
	}

	value := fl.Field().String()
	for _, validLevel := range validLevels {
		if string(validLevel) == value {
			return true
		}
	}
	return false
}

func ValidateWordDomain(fl validator.FieldLevel) bool {
	validDomains := []models.Domain{
		models.DomainVolume,
		models.DomainTime,
		models.DomainMeasurement,
		models.DomainNature,
		models.DomainCulture,
		models.DomainFood,
		models.DomainClothing,
		models.DomainArchitecture,
		models.DomainAgriculture,
		models.DomainTrade,
		models.DomainOther,
	}

	value := fl.Field().String()
	for _, validDomain := range validDomains {
		if string(validDomain) == value {
			return true
		}
	}
	return false
}

func ValidateWordPeriod(fl validator.FieldLevel) bool {
	validPeriods := []models.Period{
		models.PeriodPreClassical,
		models.PeriodAncient,
		models.PeriodClassical,
		models.PeriodModern,
		models.PeriodContemporary,
	}

	value := fl.Field().String()
	for _, validPeriod := range validPeriods {
		if string(validPeriod) == value {
			return true
		}
	}
	return false
}

func ValidateUserRole(fl validator.FieldLevel) bool {
	validRoles := []models.UserRole{
		models.RoleStudent,
		models.RoleTeacher,
		models.RoleAdmin,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("game_type", ValidateGameType)
	validate.RegisterValidation("difficulty_level", ValidateDifficultyLevel)
	validate.RegisterValidation("word_domain", ValidateWordDomain)
	validate.RegisterValidation("word_period", ValidateWordPeriod)
	validate.RegisterValidation("user_role", ValidateUserRole)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
