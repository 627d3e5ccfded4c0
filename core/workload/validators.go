package workload

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
)

var (
	semesterTag  = "semester"
	semesterText = "semester must be one of first, second or full"

	statusTag  = "assignment_status"
	statusText = "status must be one of active or deleted"
)

func init() {
	_ = core.Validate.RegisterValidation(semesterTag, semesterValidation)
	core.RegisterCustomTranslation(semesterTag, semesterText)

	_ = core.Validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(statusTag, statusText)
}

// Custom Validators

func semesterValidation(fl validator.FieldLevel) bool {
	return Semester(fl.Field().String()).Valid()
}

func statusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).Valid()
}
