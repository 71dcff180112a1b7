package report

// Mode is how a generated report reaches the caller.
type Mode string

const (
	Inline   Mode = "inline"   // rendered in the response body
	Download Mode = "download" // returned as a file attachment
	Email    Mode = "email"    // mailed to the recipients, 202 to the caller
)

type Plan struct {
	Mode Mode
	// SendEmail is set when recipients should also get a copy.
	SendEmail bool
}

// Decide picks the delivery path. CSV and PDF always download, whatever the
// recipients; recipients on top of a file format get it mailed as well. JSON
// is shown inline unless someone asked for it by email.
func Decide(format Format, recipients []string) Plan {
	hasRecipients := len(recipients) > 0
	switch format {
	case CSV, PDF:
		return Plan{Mode: Download, SendEmail: hasRecipients}
	default:
		if hasRecipients {
			return Plan{Mode: Email, SendEmail: true}
		}
		return Plan{Mode: Inline}
	}
}
