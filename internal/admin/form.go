package admin

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/trio-pos/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// ProductForm is the content of the product dialog.
type ProductForm struct {
	Name        string `form:"name" validate:"required,max=100"`
	Category    string `form:"category" validate:"required,max=50"`
	Price       string `form:"price" validate:"required"`
	Description string `form:"description"`
}

// Validate runs the superficial checks; the backend stays authoritative.
func (f ProductForm) Validate() error {
	details := map[string]string{}
	if err := validate.Struct(f); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				details[fe.Field()] = validationMessage(fe)
			}
		} else {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
		}
	}
	if _, ok := details["price"]; !ok {
		price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
		switch {
		case err != nil:
			details["price"] = "must be a number"
		case price.IsNegative():
			details["price"] = "must not be negative"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

// Values encodes the form the way the backend reads it.
func (f ProductForm) Values() url.Values {
	return url.Values{
		"name":        {strings.TrimSpace(f.Name)},
		"category":    {strings.TrimSpace(f.Category)},
		"price":       {strings.TrimSpace(f.Price)},
		"description": {f.Description},
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}
