// Package ocrtext turns the raw OCR text of a restaurant invoice into
// structured delivery data.
package ocrtext

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultCustomerName = "cliente"
	UndetectedAddress   = "NO DETECTADA"
)

// Data is what could be read from one invoice. Empty strings mean the field
// was not found.
type Data struct {
	InvoiceNumber string
	CustomerName  string
	Phone         string
	Address       string
	Subtotal      decimal.Decimal
	DeliveryFee   decimal.Decimal
	Total         decimal.Decimal
}

var (
	invoiceRx  = []*regexp.Regexp{regexp.MustCompile(`(?i)cm[-:\s]*([0-9]+)`)}
	nameRx     = []*regexp.Regexp{regexp.MustCompile(`(?i)nombre[:\s]*([a-záéíóúñ ]+)`)}
	phoneRx    = []*regexp.Regexp{regexp.MustCompile(`(?i)tel[eé]fono[:\s]*([0-9]+)`)}
	mobileRx   = regexp.MustCompile(`3[0-9]{7,10}`)
	addressRx  = []*regexp.Regexp{regexp.MustCompile(`(?i)direcci[oó]n[:\s]*([^\n]+)`)}
	subtotalRx = []*regexp.Regexp{regexp.MustCompile(`(?i)subtotal[:\s]*\$?\s*([\d.,]+)`)}
	feeRx      = []*regexp.Regexp{regexp.MustCompile(`(?i)domicilio[:\s]*\$?\s*([\d.,]+)`)}
	totalRx    = []*regexp.Regexp{regexp.MustCompile(`(?im)(?:^|[^a-z])total[:\s]*\$?\s*([\d.,]+)`)} // not "subtotal"

	spacesRx   = regexp.MustCompile(`[ ]{2,}`)
	notMoneyRx = regexp.MustCompile(`[^\d.,]`)
)

// ExtractDeliveryData reads the invoice fields out of raw OCR text.
func ExtractDeliveryData(raw string) Data {
	text := NormalizeText(raw)

	data := Data{
		InvoiceNumber: find(invoiceRx, text),
		Address:       find(addressRx, text),
		Subtotal:      ParseCOP(find(subtotalRx, text)),
		DeliveryFee:   ParseCOP(find(feeRx, text)),
		Total:         ParseCOP(find(totalRx, text)),
	}

	data.CustomerName = strings.TrimSpace(find(nameRx, text))
	if len([]rune(data.CustomerName)) < 3 {
		data.CustomerName = DefaultCustomerName
	}

	data.Phone = find(phoneRx, text)
	if data.Phone == "" {
		data.Phone = mobileRx.FindString(text)
	}

	if data.Address == "" {
		data.Address = UndetectedAddress
	}
	data.Address = FixAddress(data.Address)

	return data
}

func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = spacesRx.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "\t", " ")
	return strings.TrimSpace(text)
}

// ParseCOP reads a peso amount written with dots as thousands separators and
// an optional decimal comma ("$25.000,50"). Unreadable values are zero.
func ParseCOP(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}

	v := notMoneyRx.ReplaceAllString(value, "")
	v = strings.ReplaceAll(v, ".", "")
	v = strings.Replace(v, ",", ".", 1)

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func find(patterns []*regexp.Regexp, text string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
