package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and flattens the result
// into one readable error message.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errorsAs(err, &fieldErrors) {
			return err
		}
		messages := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			messages = append(messages, fmt.Sprintf("field %s failed on %s", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(messages, "; "))
	}
	return nil
}

func errorsAs(err error, target *validator.ValidationErrors) bool {
	fe, ok := err.(validator.ValidationErrors)
	if ok {
		*target = fe
	}
	return ok
}
