package event

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubmissionDispatchEvent(t *testing.T) {
	data := []byte(`{
		"action": "complaint-form-submission",
		"client_payload": {
			"timestamp": "2025-12-17T09:00:00Z",
			"form_title": "Product Complaint",
			"status": "submitted",
			"fields": {"Email": "a@b.com", "Country": "IL"},
			"sections": [
				{"title": "Details", "rows": [
					{"label": "Product Name", "value": "Widget"},
					{"label": "Quantity", "value": 3}
				]}
			],
			"email_to": ["x@y.com", "z@y.com"]
		}
	}`)

	sub, err := ParseSubmission(data)
	require.NoError(t, err)

	assert.Equal(t, "2025-12-17T09:00:00Z", sub.Timestamp)
	assert.Equal(t, "Product Complaint", sub.FormTitle)
	assert.Equal(t, "submitted", sub.Status)
	assert.Equal(t, "a@b.com", sub.Fields["Email"])
	assert.Equal(t, []string{"x@y.com", "z@y.com"}, sub.EmailTo)

	require.Len(t, sub.Sections, 1)
	assert.Equal(t, "Details", sub.Sections[0].Title)
	require.Len(t, sub.Sections[0].Rows, 2)
	assert.Equal(t, "Product Name", sub.Sections[0].Rows[0].Label)
	assert.Equal(t, "Widget", sub.Sections[0].Rows[0].Value)
}

func TestParseSubmissionTopLevelPayload(t *testing.T) {
	data := []byte(`{
		"timestamp": "2025-01-02T03:04:05Z",
		"fields": {"Email": "a@b.com"}
	}`)

	sub, err := ParseSubmission(data)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02T03:04:05Z", sub.Timestamp)
	assert.Equal(t, "a@b.com", sub.Fields["Email"])
}

func TestParseSubmissionDefaults(t *testing.T) {
	sub, err := ParseSubmission([]byte(`{"client_payload": {}}`))
	require.NoError(t, err)

	assert.Equal(t, "Complaint Form", sub.FormTitle)
	assert.Empty(t, sub.Timestamp)
	assert.NotNil(t, sub.Fields)
	assert.Nil(t, sub.Sections)
	assert.Nil(t, sub.EmailTo)
}

func TestParseSubmissionEmailToCommaString(t *testing.T) {
	data := []byte(`{"client_payload": {"email_to": "a@b.com, c@d.com , "}}`)

	sub, err := ParseSubmission(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.com", "c@d.com"}, sub.EmailTo)
}

func TestParseSubmissionInvalidFieldsShape(t *testing.T) {
	data := []byte(`{"client_payload": {"fields": ["not", "an", "object"]}}`)

	_, err := ParseSubmission(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_payload")
}

func TestParseSubmissionMalformedSectionRowsSkipped(t *testing.T) {
	data := []byte(`{"client_payload": {
		"sections": [
			{"title": "Good", "rows": [
				{"label": "Country", "value": "IL"},
				"not a row",
				{"label": "", "value": "no label"},
				{"value": "also no label"}
			]},
			{"title": "Empty"}
		]
	}}`)

	sub, err := ParseSubmission(data)
	require.NoError(t, err)

	require.Len(t, sub.Sections, 2)
	require.Len(t, sub.Sections[0].Rows, 1)
	assert.Equal(t, "Country", sub.Sections[0].Rows[0].Label)
	assert.Empty(t, sub.Sections[1].Rows)
}

func TestParseSubmissionInvalidJSON(t *testing.T) {
	_, err := ParseSubmission([]byte(`{not json`))
	require.Error(t, err)
}

func TestLoadSubmission(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"client_payload": {"timestamp": "2025-06-01T00:00:00Z"}
	}`), 0o644))

	sub, err := LoadSubmission(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T00:00:00Z", sub.Timestamp)
}

func TestLoadSubmissionErrors(t *testing.T) {
	_, err := LoadSubmission("")
	require.Error(t, err)

	_, err = LoadSubmission(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
