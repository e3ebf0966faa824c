// Package payment builds PayPal "send money" checkout links. Settlement is
// confirmed out of band by an administrator.
package payment

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const payPalSendURL = "https://www.paypal.com/send"

type PayPal struct {
	Email    string
	Currency string
	Brand    string
}

func NewPayPal(email, currency, brand string) PayPal {
	if currency == "" {
		currency = "USD"
	}
	if brand == "" {
		brand = "SkillBridge"
	}
	return PayPal{Email: strings.TrimSpace(email), Currency: currency, Brand: brand}
}

// Note is the memo shown to the payer, e.g. "SkillBridge Pro Membership - a@b.c".
func (p PayPal) Note(planName, payerEmail string) string {
	return fmt.Sprintf("%s %s Membership - %s", p.Brand, planName, payerEmail)
}

// SendMoneyLink keeps the parameter order amount, email, note, currency_code.
// The recipient keeps a literal "@".
func (p PayPal) SendMoneyLink(amount int, planName, payerEmail string) string {
	var b strings.Builder
	b.WriteString(payPalSendURL)
	b.WriteString("?amount=")
	b.WriteString(strconv.Itoa(amount))
	b.WriteString("&email=")
	b.WriteString(strings.ReplaceAll(componentEscape(p.Email), "%40", "@"))
	b.WriteString("&note=")
	b.WriteString(componentEscape(p.Note(planName, payerEmail)))
	b.WriteString("&currency_code=")
	b.WriteString(componentEscape(p.Currency))
	return b.String()
}

var componentUnescaper = strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")

// componentEscape escapes like a browser's encodeURIComponent: spaces become
// %20 and the marks !'()* stay literal.
func componentEscape(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// ReferenceID identifies a checkout attempt in the transaction ledger.
func ReferenceID(at time.Time, userID uuid.UUID) string {
	return fmt.Sprintf("paypal_%d_%s", at.UnixMilli(), userID)
}
