package config

import (
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	kernelParamPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+(=[^\s]*)?$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("kernel_param", func(fl validator.FieldLevel) bool {
			return kernelParamPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})
	return validateInst
}

// Load reads a policy file from disk, validates it, and fills in defaults.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pterrors.NewParseError(path, 0, err)
	}

	var policy Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, pterrors.NewParseError(path, extractLine(err), err)
	}

	if err := Validate(&policy); err != nil {
		return nil, err
	}

	policy.applyDefaults()
	return &policy, nil
}

// Validate checks a policy against its declared constraints.
func Validate(policy *Policy) error {
	if err := validatorInstance().Struct(policy); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return pterrors.NewValidationError(
				first.Namespace(),
				fmt.Sprintf("failed %q constraint", first.Tag()),
				err,
			)
		}
		return pterrors.NewValidationError("", err.Error(), err)
	}
	return nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}
