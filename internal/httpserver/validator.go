package httpserver

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormValidator plugs go-playground/validator into echo. Field names in
// errors are the form keys of the bound struct.
type FormValidator struct {
	v *validator.Validate
}

func NewFormValidator() *FormValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &FormValidator{v: v}
}

func (fv *FormValidator) Validate(i any) error {
	return fv.v.Struct(i)
}

// fieldErrors maps validation failures to user messages keyed by form field.
// messages is keyed by "field.tag"; unknown pairs get a generic message.
func fieldErrors(err error, messages map[string]string) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := map[string]string{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = "Valor inválido."
		}
		out[fe.Field()] = msg
	}
	return out
}
