package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAmountInWords(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "CERO CON 00/100 SOLES"},
		{18.50, "DIECIOCHO CON 50/100 SOLES"},
		{26, "VEINTISÉIS CON 00/100 SOLES"},
		{100, "CIEN CON 00/100 SOLES"},
		{118, "CIENTO DIECIOCHO CON 00/100 SOLES"},
		{745.99, "SETECIENTOS CUARENTA Y CINCO CON 99/100 SOLES"},
		{1000, "MIL CON 00/100 SOLES"},
		{21500.05, "VEINTIÚN MIL QUINIENTOS CON 05/100 SOLES"},
		{1_000_000, "UN MILLÓN CON 00/100 SOLES"},
		{2_345_678, "DOS MILLONES TRESCIENTOS CUARENTA Y CINCO MIL SEISCIENTOS SETENTA Y OCHO CON 00/100 SOLES"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, AmountInWords(tc.amount), "amount %v", tc.amount)
	}
}

func TestBuildPayloadTotalsAndIdentity(t *testing.T) {
	issued := time.Date(2024, 6, 11, 3, 30, 0, 0, time.UTC) // 22:30 of June 10 in Lima

	payload := BuildPayload(testCompany, "persona-1", "token-1", Factura, "00000007", testInvoiceData(), issued)

	require.Equal(t, "persona-1", payload["personaId"])
	require.Equal(t, "token-1", payload["personaToken"])
	require.Equal(t, "20123456789-01-F001-00000007", payload["fileName"])

	body := payload["documentBody"].(map[string]any)
	require.Equal(t, map[string]any{"_text": "F001-00000007"}, body["cbc:ID"])
	require.Equal(t, map[string]any{"_text": "2024-06-10"}, body["cbc:IssueDate"])
	require.Equal(t, map[string]any{"_text": "22:30:00"}, body["cbc:IssueTime"])

	totals := body["cac:LegalMonetaryTotal"].(map[string]any)
	require.Equal(t, pen(100), totals["cbc:LineExtensionAmount"])
	require.Equal(t, pen(118), totals["cbc:TaxInclusiveAmount"])
	require.Equal(t, pen(118), totals["cbc:PayableAmount"])

	note := body["cbc:Note"].([]map[string]any)[0]
	require.Equal(t, "CIENTO DIECIOCHO CON 00/100 SOLES", note["_text"])

	lines := body["cac:InvoiceLine"].([]map[string]any)
	require.Len(t, lines, 1)
	require.Equal(t, pen(100), lines[0]["cbc:LineExtensionAmount"])

	// Cash terms only appear on facturas.
	require.Contains(t, body, "cac:PaymentTerms")
	boleta := BuildPayload(testCompany, "persona-1", "token-1", Boleta, "00000007", testInvoiceData(), issued)
	require.NotContains(t, boleta["documentBody"].(map[string]any), "cac:PaymentTerms")
}

func TestCustomerSchemeID(t *testing.T) {
	require.Equal(t, "6", customerSchemeID("RUC"))
	require.Equal(t, "1", customerSchemeID("DNI"))
	require.Equal(t, "1", customerSchemeID(""))
}
