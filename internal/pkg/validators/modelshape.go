package validators

import (
	"github.com/go-playground/validator/v10"
)

// HeadDivisionValidation validates that the number of attention heads evenly
// divides the embedding dimension of the surrounding request.
func HeadDivisionValidation(fl validator.FieldLevel) bool {
	embedDim := fl.Parent().FieldByName("EmbedDim").Int()
	numHeads := fl.Field().Int()

	if numHeads <= 0 || embedDim <= 0 {
		return false
	}
	return embedDim%numHeads == 0
}
