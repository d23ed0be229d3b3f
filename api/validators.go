package api

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"science-ecosystem/ids"
)

var validatorsOnce sync.Once

// registerValidators hängt die Kennungs-Prüfungen an gins Validator.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("openalex_author", func(fl validator.FieldLevel) bool {
			_, ok := ids.NormalizeAuthorID(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("paper_id", func(fl validator.FieldLevel) bool {
			_, ok := ids.NormalizePaperID(fl.Field().String())
			return ok
		})
	})
}
