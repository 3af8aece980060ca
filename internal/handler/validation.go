package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/user/anitrack/internal/model"
)

// RegisterValidations 注册自定义校验规则
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("liststatus", func(fl validator.FieldLevel) bool {
			return model.ValidListStatus(fl.Field().String())
		})
	}
}
