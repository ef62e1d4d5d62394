package orders

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/imrishuroy/go-shop-admin/internal/money"
)

const whatsAppBase = "https://wa.me/"

// DefaultWhatsAppMessage is the greeting staff send when a new order comes in.
func DefaultWhatsAppMessage(o Order) string {
	return fmt.Sprintf("Hola %s, recibimos tu pedido #%s por %s. Coordinamos el pago por acá.",
		o.Customer.Name, o.OrderNumber, money.FormatARS(o.TotalAmount))
}

// WhatsAppLink builds a wa.me deep link. Non-digits are stripped from phone and the
// message is percent-encoded with spaces as %20.
func WhatsAppLink(phone, message string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return "", ErrMissingPhone
	}
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return whatsAppBase + digits + "?text=" + text, nil
}
