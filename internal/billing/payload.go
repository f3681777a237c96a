package billing

import (
	"fmt"
	"strconv"
	"time"
)

// InvoiceClient is the customer identification printed on a receipt.
type InvoiceClient struct {
	Name           string
	Address        string
	DocumentType   string
	DocumentNumber string
}

// InvoiceLine is one billed product line.
type InvoiceLine struct {
	ProductName string
	UnitPrice   float64
	Quantity    float64
}

// InvoiceData is everything pulled from a sale needed to assemble a document.
type InvoiceData struct {
	Client InvoiceClient
	Lines  []InvoiceLine
}

// limaTZ is the issuing timezone. Peru does not observe DST.
var limaTZ = func() *time.Location {
	if loc, err := time.LoadLocation("America/Lima"); err == nil {
		return loc
	}
	return time.FixedZone("-05", -5*3600)
}()

// FileName builds the provider file name for a document of the series.
func FileName(ruc string, docType DocType, suggestedNumber string) string {
	return fmt.Sprintf("%s-%s-%s-%s", ruc, docType.TypeCode(), docType.Serie(), suggestedNumber)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func pen(v float64) map[string]any {
	return map[string]any{"_attributes": map[string]any{"currencyID": "PEN"}, "_text": money(v)}
}

// customerSchemeID maps the client document type to SUNAT catalog 06.
func customerSchemeID(documentType string) string {
	if documentType == "RUC" {
		return "6"
	}
	return "1"
}

// BuildPayload assembles the sendBill request body in the UBL 2.1 JSON shape
// the provider expects. Unit prices are tax exclusive; IGV at 18% is added on
// top of every line.
func BuildPayload(company Company, personaID, personaToken string, docType DocType, suggestedNumber string, data InvoiceData, now time.Time) map[string]any {
	var taxExcl float64
	for _, l := range data.Lines {
		taxExcl += l.Quantity * l.UnitPrice
	}
	taxAmount := taxExcl * 0.18
	totalAmount := taxExcl + taxAmount

	issued := now.In(limaTZ)
	serie := docType.Serie()

	lines := make([]map[string]any, 0, len(data.Lines))
	for i, l := range data.Lines {
		lineExcl := l.Quantity * l.UnitPrice
		lineTax := lineExcl * 0.18
		lines = append(lines, map[string]any{
			"cbc:ID": map[string]any{"_text": strconv.Itoa(i + 1)},
			"cbc:InvoicedQuantity": map[string]any{
				"_attributes": map[string]any{"unitCode": "NIU"},
				"_text":       l.Quantity,
			},
			"cbc:LineExtensionAmount": pen(lineExcl),
			"cac:PricingReference": map[string]any{
				"cac:AlternativeConditionPrice": map[string]any{
					"cbc:PriceAmount":   pen(l.UnitPrice * 1.18),
					"cbc:PriceTypeCode": map[string]any{"_text": "01"},
				},
			},
			"cac:TaxTotal": map[string]any{
				"cbc:TaxAmount": pen(lineTax),
				"cac:TaxSubtotal": []map[string]any{{
					"cbc:TaxableAmount": pen(lineExcl),
					"cbc:TaxAmount":     pen(lineTax),
					"cac:TaxCategory": map[string]any{
						"cbc:Percent":                map[string]any{"_text": "18"},
						"cbc:TaxExemptionReasonCode": map[string]any{"_text": "10"},
						"cac:TaxScheme": map[string]any{
							"cbc:ID":          map[string]any{"_text": "1000"},
							"cbc:Name":        map[string]any{"_text": "IGV"},
							"cbc:TaxTypeCode": map[string]any{"_text": "VAT"},
						},
					},
				}},
			},
			"cac:Item":  map[string]any{"cbc:Description": map[string]any{"_text": l.ProductName}},
			"cac:Price": map[string]any{"cbc:PriceAmount": pen(l.UnitPrice)},
		})
	}

	body := map[string]any{
		"cbc:UBLVersionID":    map[string]any{"_text": "2.1"},
		"cbc:CustomizationID": map[string]any{"_text": "2.0"},
		"cbc:ID":              map[string]any{"_text": serie + "-" + suggestedNumber},
		"cbc:IssueDate":       map[string]any{"_text": issued.Format("2006-01-02")},
		"cbc:IssueTime":       map[string]any{"_text": issued.Format("15:04:05")},
		"cbc:InvoiceTypeCode": map[string]any{
			"_attributes": map[string]any{"listID": "0101"},
			"_text":       docType.TypeCode(),
		},
		"cbc:Note": []map[string]any{{
			"_text":       AmountInWords(totalAmount),
			"_attributes": map[string]any{"languageLocaleID": "1000"},
		}},
		"cbc:DocumentCurrencyCode": map[string]any{"_text": "PEN"},
		"cac:AccountingSupplierParty": map[string]any{
			"cac:Party": map[string]any{
				"cac:PartyIdentification": map[string]any{
					"cbc:ID": map[string]any{
						"_attributes": map[string]any{"schemeID": "6"},
						"_text":       company.RUC,
					},
				},
				"cac:PartyName": map[string]any{
					"cbc:Name": map[string]any{"_text": company.Name},
				},
				"cac:PartyLegalEntity": map[string]any{
					"cbc:RegistrationName": map[string]any{"_text": company.RegistrationName},
					"cac:RegistrationAddress": map[string]any{
						"cbc:AddressTypeCode": map[string]any{"_text": "0000"},
						"cac:AddressLine": map[string]any{
							"cbc:Line": map[string]any{"_text": company.Address},
						},
					},
				},
			},
		},
		"cac:AccountingCustomerParty": map[string]any{
			"cac:Party": map[string]any{
				"cac:PartyIdentification": map[string]any{
					"cbc:ID": map[string]any{
						"_attributes": map[string]any{"schemeID": customerSchemeID(data.Client.DocumentType)},
						"_text":       data.Client.DocumentNumber,
					},
				},
				"cac:PartyLegalEntity": map[string]any{
					"cbc:RegistrationName": map[string]any{"_text": data.Client.Name},
					"cac:RegistrationAddress": map[string]any{
						"cac:AddressLine": map[string]any{
							"cbc:Line": map[string]any{"_text": data.Client.Address},
						},
					},
				},
			},
		},
		"cac:TaxTotal": map[string]any{
			"cbc:TaxAmount": pen(taxAmount),
			"cac:TaxSubtotal": []map[string]any{{
				"cbc:TaxableAmount": pen(taxExcl),
				"cbc:TaxAmount":     pen(taxAmount),
				"cac:TaxCategory": map[string]any{
					"cac:TaxScheme": map[string]any{
						"cbc:ID":          map[string]any{"_text": "1000"},
						"cbc:Name":        map[string]any{"_text": "IGV"},
						"cbc:TaxTypeCode": map[string]any{"_text": "VAT"},
					},
				},
			}},
		},
		"cac:LegalMonetaryTotal": map[string]any{
			"cbc:LineExtensionAmount": pen(taxExcl),
			"cbc:TaxInclusiveAmount":  pen(totalAmount),
			"cbc:PayableAmount":       pen(totalAmount),
		},
		"cac:InvoiceLine": lines,
	}
	if docType == Factura {
		body["cac:PaymentTerms"] = []map[string]any{{
			"cbc:ID":             map[string]any{"_text": "FormaPago"},
			"cbc:PaymentMeansID": map[string]any{"_text": "Contado"},
		}}
	}

	return map[string]any{
		"personaId":    personaID,
		"personaToken": personaToken,
		"fileName":     FileName(company.RUC, docType, suggestedNumber),
		"documentBody": body,
	}
}
