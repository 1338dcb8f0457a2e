// Package format presenta cantidades y montos según la configuración regional (DISPLAY_LOCALE).
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale se usa cuando DISPLAY_LOCALE está vacío o no se reconoce.
const DefaultLocale = "es-CO"

// Formatter envuelve un message.Printer para un idioma fijo. Seguro para uso concurrente.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// New crea un Formatter para la etiqueta BCP 47 indicada (ej. "es-CO", "en-US").
func New(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.MustParse(DefaultLocale)
	}
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}
}

// Locale etiqueta efectiva.
func (f *Formatter) Locale() string { return f.tag.String() }

// Quantity cantidad con separadores locales, hasta 3 decimales, seguida de la unidad.
func (f *Formatter) Quantity(q decimal.Decimal, unit string) string {
	s := f.printer.Sprint(number.Decimal(q.InexactFloat64(), number.MaxFractionDigits(3)))
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// Money monto con 2 decimales fijos y separadores locales (sin símbolo de moneda).
func (f *Formatter) Money(v decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(v.Round(2).InexactFloat64(),
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Shortfall aviso legible cuando una salida no pudo cubrirse con lotes.
func (f *Formatter) Shortfall(shortfall decimal.Decimal, unit string) string {
	return f.printer.Sprintf("faltaron %s sin lote que descontar", f.Quantity(shortfall, unit))
}
