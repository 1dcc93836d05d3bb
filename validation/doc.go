// Package validation validates configuration structs using
// go-playground/validator struct tags and reports failures as
// INVALID_ARGUMENT errors.
//
//	type HealthCheckConfig struct {
//	    Port int `mapstructure:"port" validate:"gte=0,lte=65535"`
//	}
//
//	if err := validation.Validate(cfg); err != nil {
//	    return err // *errors.AppError with per-field details
//	}
package validation
