package validation

import (
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-shop-admin/internal/money"
)

// New returns a configured validator with the custom types and struct-level rules
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	// money is compared as a number so gte/gt tags apply
	v.RegisterCustomTypeFunc(moneyValue, money.Money{})

	v.RegisterStructValidation(stockAdjustmentStructValidation, StockAdjustmentRequest{})
	v.RegisterStructValidation(customerStructValidation, CustomerRequest{})

	return v
}

func moneyValue(field reflect.Value) interface{} {
	if m, ok := field.Interface().(money.Money); ok {
		f, _ := m.Float64()
		return f
	}
	return nil
}

// stockAdjustmentStructValidation requires a positive quantity for add/remove and a
// non-negative one for set.
func stockAdjustmentStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(StockAdjustmentRequest)
	if req.Quantity == nil {
		return
	}
	switch req.Type {
	case "add", "remove":
		if *req.Quantity <= 0 {
			sl.ReportError(req.Quantity, "quantity", "Quantity", "positive_for_add_remove", "")
		}
	case "set":
		if *req.Quantity < 0 {
			sl.ReportError(req.Quantity, "quantity", "Quantity", "non_negative_for_set", "")
		}
	}
}

// customerStructValidation requires a way to contact the customer.
func customerStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CustomerRequest)
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Phone) == "" {
		sl.ReportError(req.Phone, "phone", "Phone", "phone_or_email", "")
	}
}
