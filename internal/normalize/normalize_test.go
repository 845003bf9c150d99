package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"complaint-pipeline/internal/event"
)

func TestNormalizeFromFields(t *testing.T) {
	n := Normalize(map[string]interface{}{
		"Email":            "a@b.com",
		"Country":          "IL",
		"Product":          "Widget",
		"Serial Number":    "SN-123",
		"Complaint Type":   "Damage",
		"Unrelated Column": "ignored",
	}, nil)

	assert.Equal(t, "a@b.com", n.CustomerEmail)
	assert.Equal(t, "IL", n.Country)
	assert.Equal(t, "Widget", n.ProductName)
	assert.Equal(t, "SN-123", n.LotSerialNo)
	assert.Equal(t, "Damage", n.ComplaintType)
}

func TestNormalizeFromSections(t *testing.T) {
	sections := []event.Section{
		{
			Title: "Contact",
			Rows: []event.Row{
				{Label: "Email Address", Value: "customer@example.com"},
				{Label: "Country", Value: "IL"},
			},
		},
		{
			Title: "Product",
			Rows: []event.Row{
				{Label: "Product Name", Value: "Widget Pro"},
				{Label: "LOT / Serial Number", Value: "LOT-42"},
			},
		},
	}

	n := Normalize(nil, sections)
	assert.Equal(t, "customer@example.com", n.CustomerEmail)
	assert.Equal(t, "IL", n.Country)
	assert.Equal(t, "Widget Pro", n.ProductName)
	assert.Equal(t, "LOT-42", n.LotSerialNo)
	assert.Equal(t, "", n.ComplaintType)
}

func TestNormalizeFieldsWinOverSections(t *testing.T) {
	fields := map[string]interface{}{"Email": "flat@example.com"}
	sections := []event.Section{
		{Rows: []event.Row{{Label: "Email Address", Value: "nested@example.com"}}},
	}

	n := Normalize(fields, sections)
	assert.Equal(t, "flat@example.com", n.CustomerEmail)
}

func TestNormalizeAliasOrder(t *testing.T) {
	n := Normalize(map[string]interface{}{
		"Email":         "second@example.com",
		"Email Address": "first@example.com",
	}, nil)
	assert.Equal(t, "first@example.com", n.CustomerEmail)
}

func TestNormalizeEmptyValueFallsThrough(t *testing.T) {
	n := Normalize(map[string]interface{}{
		"Email Address": "   ",
		"Email":         "real@example.com",
	}, nil)
	assert.Equal(t, "real@example.com", n.CustomerEmail)
}

func TestNormalizeCaseSensitiveLabels(t *testing.T) {
	n := Normalize(map[string]interface{}{"email": "a@b.com"}, nil)
	assert.Equal(t, "", n.CustomerEmail)
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil", nil, ""},
		{"string", "  hello  ", "hello"},
		{"int", 42, "42"},
		{"float", 3.5, "3.5"},
		{"bool", true, "true"},
		{"string slice", []string{"a", "b"}, "a, b"},
		{"mixed slice", []interface{}{"a", 2, nil, " "}, "a, 2"},
		{"empty slice", []interface{}{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.value))
		})
	}
}

func TestFlattenSectionsLaterDuplicateWins(t *testing.T) {
	flat := FlattenSections([]event.Section{
		{Rows: []event.Row{{Label: "Country", Value: "DE"}}},
		{Rows: []event.Row{{Label: "Country", Value: "IL"}, {Label: "", Value: "skipped"}}},
	})

	assert.Equal(t, map[string]string{"Country": "IL"}, flat)
}

func TestOverflow(t *testing.T) {
	fields := map[string]interface{}{
		"b":     "2",
		"a":     "1",
		"empty": "",
	}
	sections := []event.Section{
		{
			Title: "Details",
			Rows: []event.Row{
				{Label: "Country", Value: "IL"},
				{Label: "Blank", Value: "  "},
			},
		},
		{
			Rows: []event.Row{{Label: "Loose", Value: "v"}},
		},
	}

	got := Overflow(fields, sections)
	assert.Equal(t, "a=1 | b=2 | Details.Country=IL | Loose=v", got)
}

func TestOverflowEmpty(t *testing.T) {
	assert.Equal(t, "", Overflow(nil, nil))
	assert.Equal(t, "", Overflow(map[string]interface{}{"x": ""}, nil))
}
