package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/service"
)

// RegisterValidators adds the domain tags used in request binding:
// role, project_status, asset_type and username.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	rules := map[string]validator.Func{
		"role": func(fl validator.FieldLevel) bool {
			return model.Role(fl.Field().String()).Valid()
		},
		"project_status": func(fl validator.FieldLevel) bool {
			return model.ProjectStatus(fl.Field().String()).Valid()
		},
		"asset_type": func(fl validator.FieldLevel) bool {
			return model.AssetType(fl.Field().String()).Valid()
		},
		"username": func(fl validator.FieldLevel) bool {
			return service.ValidUsername(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
