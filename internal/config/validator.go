package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	simerrors "github.com/montysim/simdeploy/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	awsRegionPattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d$`)
	envSuffixPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("aws_region", func(fl validator.FieldLevel) bool {
			return awsRegionPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("env_suffix", func(fl validator.FieldLevel) bool {
			return envSuffixPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig performs schema and cross-field validation on the
// configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return simerrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]struct{}, len(cfg.Addons))
	for i, addon := range cfg.Addons {
		if _, dup := seen[addon.Name]; dup {
			return simerrors.NewValidationError(fmt.Sprintf("addons[%d].name", i), fmt.Sprintf("duplicate add-on %q", addon.Name), nil)
		}
		seen[addon.Name] = struct{}{}
	}

	return nil
}

func convertValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		return simerrors.NewValidationError(field, describeFieldError(fe), err)
	}

	return simerrors.NewValidationError("config", err.Error(), err)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "aws_region":
		return fmt.Sprintf("%q is not a valid region", fe.Value())
	case "env_suffix":
		return fmt.Sprintf("%q is not a valid environment suffix", fe.Value())
	case "url":
		return fmt.Sprintf("%q is not a valid URL", fe.Value())
	case "min", "max":
		return fmt.Sprintf("failed %s=%s constraint", fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
