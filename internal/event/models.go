package event

// Submission is the parsed form-submission payload carried by a
// repository_dispatch event.
type Submission struct {
	Timestamp string
	FormTitle string
	Status    string
	Fields    map[string]interface{}
	Sections  []Section
	EmailTo   []string
}

// Section is one titled group of label/value rows from a structured form.
type Section struct {
	Title string
	Rows  []Row
}

type Row struct {
	Label string
	Value interface{}
}

// dispatchEvent is the on-disk shape of a repository_dispatch event.
type dispatchEvent struct {
	Action        string                 `json:"action"`
	ClientPayload map[string]interface{} `json:"client_payload"`
}
