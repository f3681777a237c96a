package billing

import (
	"fmt"
	"math"
	"strings"
)

var wordUnits = []string{"", "uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve"}

var wordTeens = []string{"diez", "once", "doce", "trece", "catorce", "quince",
	"dieciséis", "diecisiete", "dieciocho", "diecinueve"}

var wordTwenties = []string{"veinte", "veintiuno", "veintidós", "veintitrés", "veinticuatro",
	"veinticinco", "veintiséis", "veintisiete", "veintiocho", "veintinueve"}

var wordTens = []string{"", "", "", "treinta", "cuarenta", "cincuenta", "sesenta", "setenta", "ochenta", "noventa"}

var wordHundreds = []string{"", "ciento", "doscientos", "trescientos", "cuatrocientos",
	"quinientos", "seiscientos", "setecientos", "ochocientos", "novecientos"}

func wordsBelowHundred(n int) string {
	switch {
	case n < 10:
		return wordUnits[n]
	case n < 20:
		return wordTeens[n-10]
	case n < 30:
		return wordTwenties[n-20]
	default:
		if n%10 == 0 {
			return wordTens[n/10]
		}
		return wordTens[n/10] + " y " + wordUnits[n%10]
	}
}

func wordsBelowThousand(n int) string {
	if n == 100 {
		return "cien"
	}
	h, rest := n/100, n%100
	if h == 0 {
		return wordsBelowHundred(rest)
	}
	if rest == 0 {
		return wordHundreds[h]
	}
	return wordHundreds[h] + " " + wordsBelowHundred(rest)
}

// apocope shortens a trailing "uno" before mil and millón.
func apocope(s string) string {
	s = strings.TrimSuffix(s, "uno")
	if strings.HasSuffix(s, "veinti") {
		return s + "ún"
	}
	return s + "un"
}

// numberWords spells a non-negative integer in Spanish.
func numberWords(n int) string {
	if n == 0 {
		return "cero"
	}
	var parts []string
	if m := n / 1_000_000; m > 0 {
		if m == 1 {
			parts = append(parts, "un millón")
		} else {
			parts = append(parts, numberWords(m)+" millones")
		}
		n %= 1_000_000
	}
	if t := n / 1000; t > 0 {
		if t == 1 {
			parts = append(parts, "mil")
		} else {
			w := wordsBelowThousand(t)
			if strings.HasSuffix(w, "uno") {
				w = apocope(w)
			}
			parts = append(parts, w+" mil")
		}
		n %= 1000
	}
	if n > 0 {
		parts = append(parts, wordsBelowThousand(n))
	}
	return strings.Join(parts, " ")
}

// AmountInWords renders a monetary note in the format required on the
// receipt, for example "CIENTO DIECIOCHO CON 00/100 SOLES".
func AmountInWords(amount float64) string {
	entero := int(math.Floor(amount))
	cents := int(math.Round((amount - math.Floor(amount)) * 100))
	if cents == 100 {
		entero++
		cents = 0
	}
	return fmt.Sprintf("%s CON %02d/100 SOLES", strings.ToUpper(numberWords(entero)), cents)
}
