package ledger

import "strings"

// Columns is the fixed ordered column list of the complaint ledger.
// Column order is part of the on-disk contract: downstream reporting
// reads this file positionally, so changes here trigger an in-place
// migration of existing files and must stay forward-only.
var Columns = []string{
	"complaint_id",
	"submission_timestamp",
	"created_at_utc",
	"recipients",
	"customer_email",
	"country",
	"product_name",
	"lot_serial_no",
	"complaint_type",
	"pdf_filename",
	"dropbox_file_path",
	"dropbox_shared_link",
	"github_run_url",
	"all_fields_kv",
}

// legacyAliases maps current column names to retired names whose values
// are carried forward during migration.
var legacyAliases = map[string][]string{
	"dropbox_file_path": {"dropbox_folder"},
}

// Record is one append-only ledger row. created_at_utc is always
// store-generated and therefore absent here.
type Record struct {
	ComplaintID         string
	SubmissionTimestamp string
	Recipients          []string
	CustomerEmail       string
	Country             string
	ProductName         string
	LotSerialNo         string
	ComplaintType       string
	PDFFilename         string
	DropboxFilePath     string
	DropboxSharedLink   string
	GitHubRunURL        string
	AllFieldsKV         string
}

func (r Record) toRow(createdAtUTC string) map[string]string {
	return map[string]string{
		"complaint_id":         r.ComplaintID,
		"submission_timestamp": r.SubmissionTimestamp,
		"created_at_utc":       createdAtUTC,
		"recipients":           joinRecipients(r.Recipients),
		"customer_email":       r.CustomerEmail,
		"country":              r.Country,
		"product_name":         r.ProductName,
		"lot_serial_no":        r.LotSerialNo,
		"complaint_type":       r.ComplaintType,
		"pdf_filename":         r.PDFFilename,
		"dropbox_file_path":    r.DropboxFilePath,
		"dropbox_shared_link":  r.DropboxSharedLink,
		"github_run_url":       r.GitHubRunURL,
		"all_fields_kv":        r.AllFieldsKV,
	}
}

func joinRecipients(recipients []string) string {
	out := ""
	for _, r := range recipients {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += r
	}
	return out
}
