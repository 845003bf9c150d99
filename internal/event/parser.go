package event

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadSubmission reads a repository_dispatch event file and parses its
// client_payload into a Submission.
func LoadSubmission(path string) (*Submission, error) {
	if path == "" {
		return nil, fmt.Errorf("event path not set")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event file: %w", err)
	}

	return ParseSubmission(data)
}

// ParseSubmission parses raw event JSON into a Submission. The payload
// is schema-validated; a submission the pipeline cannot trust is fatal
// before any side effects run.
func ParseSubmission(data []byte) (*Submission, error) {
	var evt dispatchEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	payload := evt.ClientPayload
	if payload == nil {
		// Some senders put the payload at the top level.
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
	}

	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	sub := &Submission{
		Timestamp: stringValue(payload["timestamp"]),
		FormTitle: stringValue(payload["form_title"]),
		Status:    stringValue(payload["status"]),
		Fields:    map[string]interface{}{},
		Sections:  toSections(payload["sections"]),
		EmailTo:   toRecipients(payload["email_to"]),
	}

	if fields, ok := payload["fields"].(map[string]interface{}); ok {
		sub.Fields = fields
	}

	if sub.FormTitle == "" {
		sub.FormTitle = "Complaint Form"
	}

	return sub, nil
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// toSections converts the raw sections value permissively: entries and
// rows that do not have the expected shape are skipped, never an error.
func toSections(raw interface{}) []Section {
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	sections := make([]Section, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		sec := Section{Title: stringValue(m["title"])}
		rows, _ := m["rows"].([]interface{})
		for _, r := range rows {
			rm, ok := r.(map[string]interface{})
			if !ok {
				continue
			}
			label := stringValue(rm["label"])
			if label == "" {
				continue
			}
			sec.Rows = append(sec.Rows, Row{Label: label, Value: rm["value"]})
		}
		sections = append(sections, sec)
	}

	if len(sections) == 0 {
		return nil
	}
	return sections
}

// toRecipients accepts either a comma-separated string or a list.
func toRecipients(raw interface{}) []string {
	switch v := raw.(type) {
	case string:
		return splitAddresses(v)
	case []interface{}:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	default:
		return nil
	}
}

func splitAddresses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
