// Package validator provides the struct validator used for configuration checks.
package validator

import (
	"github.com/go-playground/validator/v10"
)

var supportedDrivers = map[string]bool{
	"sqlite":   true,
	"postgres": true,
}

var supportedEnvs = map[string]bool{
	"development": true,
	"production":  true,
	"test":        true,
}

// New returns a validator with the custom rules registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("db_driver", validateDBDriver)
	_ = v.RegisterValidation("app_env", validateAppEnv)
	return v
}

func validateDBDriver(fl validator.FieldLevel) bool {
	return supportedDrivers[fl.Field().String()]
}

func validateAppEnv(fl validator.FieldLevel) bool {
	return supportedEnvs[fl.Field().String()]
}
