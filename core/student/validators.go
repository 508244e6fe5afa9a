package student

import (
	"regexp"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mrdaoud/tadrees/core"
)

var (
	stageTag  = "stage"
	stageText = "stage must be one of: primary, prep"

	localPhoneTag   = "localphone"
	localPhoneText  = "must be a valid local mobile number"
	localPhoneRegex = regexp.MustCompile(`^01[0-9]{9}$`)

	dateISOTag  = "dateiso"
	dateISOText = "must be a date in YYYY-MM-DD format"

	gradeLevelTag  = "gradelevel"
	gradeLevelText = "grade level does not belong to the selected stage"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(stageTag, stageValidation)
	core.RegisterCustomTranslation(validate, translator, stageTag, stageText)

	_ = validate.RegisterValidation(localPhoneTag, localPhoneValidation)
	core.RegisterCustomTranslation(validate, translator, localPhoneTag, localPhoneText)

	_ = validate.RegisterValidation(dateISOTag, dateISOValidation)
	core.RegisterCustomTranslation(validate, translator, dateISOTag, dateISOText)

	// a grade level is only valid within its stage's enumeration
	validate.RegisterStructValidation(studentStructValidation, NewStudent{}, UpdateStudent{})
	core.RegisterCustomTranslation(validate, translator, gradeLevelTag, gradeLevelText)
}

func stageValidation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case StagePrimary, StagePrep:
		return true
	default:
		return false
	}
}

func localPhoneValidation(fl validator.FieldLevel) bool {
	return localPhoneRegex.MatchString(fl.Field().String())
}

func dateISOValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

func studentStructValidation(sl validator.StructLevel) {
	var stage, level string
	switch data := sl.Current().Interface().(type) {
	case NewStudent:
		stage, level = data.Stage, data.GradeLevel
	case UpdateStudent:
		stage, level = data.Stage, data.GradeLevel
	default:
		return
	}
	if stage == "" || level == "" {
		return // covered by the required tags
	}
	if !ValidGradeLevel(stage, level) {
		sl.ReportError(level, "grade_level", "GradeLevel", gradeLevelTag, "")
	}
}
