// Package normalize maps a submission's free-form field set onto the
// ledger's fixed normalized columns. Upstream forms rename their labels
// over time; the alias tables absorb that without a rigid schema, and
// the overflow rendering keeps everything the aliases miss.
package normalize

import (
	"fmt"
	"sort"
	"strings"

	"complaint-pipeline/internal/event"
)

// Normalized holds the five alias-resolved ledger columns. Unresolved
// columns are empty strings, never errors.
type Normalized struct {
	CustomerEmail string
	Country       string
	ProductName   string
	LotSerialNo   string
	ComplaintType string
}

// Alias labels are checked in listed order, case-sensitively, first
// against the flat field set and then against the flattened sections.
var (
	customerEmailAliases = []string{"Email Address", "Email", "Customer Email", "E-mail", "Mail"}
	countryAliases       = []string{"Country"}
	productNameAliases   = []string{"Product Name", "Product"}
	lotSerialAliases     = []string{"LOT / Serial Number", "Lot / Serial Number", "LOT", "Serial Number", "Lot", "Serial"}
	complaintTypeAliases = []string{"Complaint Type", "Type of Complaint"}
)

func Normalize(fields map[string]interface{}, sections []event.Section) Normalized {
	flat := FlattenSections(sections)
	return Normalized{
		CustomerEmail: resolve(fields, flat, customerEmailAliases),
		Country:       resolve(fields, flat, countryAliases),
		ProductName:   resolve(fields, flat, productNameAliases),
		LotSerialNo:   resolve(fields, flat, lotSerialAliases),
		ComplaintType: resolve(fields, flat, complaintTypeAliases),
	}
}

func resolve(fields map[string]interface{}, flat map[string]string, labels []string) string {
	for _, label := range labels {
		if v, ok := fields[label]; ok {
			if s := Stringify(v); s != "" {
				return s
			}
		}
	}
	for _, label := range labels {
		if s := flat[label]; s != "" {
			return s
		}
	}
	return ""
}

// FlattenSections collapses section rows into a label-to-value map.
// Later duplicate labels overwrite earlier ones.
func FlattenSections(sections []event.Section) map[string]string {
	flat := make(map[string]string)
	for _, sec := range sections {
		for _, row := range sec.Rows {
			if row.Label == "" {
				continue
			}
			flat[row.Label] = Stringify(row.Value)
		}
	}
	return flat
}

// Stringify renders any submission value as a trimmed string. Sequences
// become a comma-joined list; nil is empty.
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []string:
		return joinStrings(len(val), func(i int) interface{} { return val[i] })
	case []interface{}:
		return joinStrings(len(val), func(i int) interface{} { return val[i] })
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func joinStrings(n int, at func(int) interface{}) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if s := Stringify(at(i)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Overflow renders the complete original field set, plus nested section
// data, as a compact audit string: sorted key=value pairs for fields,
// followed by section rows in document order. Compact enough to read in
// a spreadsheet cell, complete enough that nothing the submission
// carried is lost.
func Overflow(fields map[string]interface{}, sections []event.Section) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []string
	for _, k := range keys {
		v := Stringify(fields[k])
		if v == "" {
			continue
		}
		pairs = append(pairs, k+"="+v)
	}

	for _, sec := range sections {
		for _, row := range sec.Rows {
			v := Stringify(row.Value)
			if row.Label == "" || v == "" {
				continue
			}
			key := row.Label
			if sec.Title != "" {
				key = sec.Title + "." + row.Label
			}
			pairs = append(pairs, key+"="+v)
		}
	}

	return strings.Join(pairs, " | ")
}
