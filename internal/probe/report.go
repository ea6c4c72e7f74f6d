package probe

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Write renders r in the given format.
func Write(w io.Writer, r *Report, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatText, "":
		_, err := io.WriteString(w, text(r))
		return err
	default:
		return fmt.Errorf("probe: unknown output format %q", format)
	}
}

func text(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "IDOR probe of %s (%s mode)\n\n", r.Target, r.Mode)
	for _, f := range r.Findings {
		who := ""
		if f.Identity != "" {
			who = " as " + f.Identity
		}
		fmt.Fprintf(&b, "[%s] %s %s%s\n", f.Severity, f.Method, f.Endpoint, who)
		fmt.Fprintf(&b, "    %s\n", f.Description)
		fmt.Fprintf(&b, "    %s\n", f.Evidence)
	}
	if len(r.Findings) > 0 {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%d requests, %d findings", r.Requests, len(r.Findings))
	for _, sev := range []string{SeverityCritical, SeverityHigh, SeverityMedium} {
		if n := r.Count(sev); n > 0 {
			fmt.Fprintf(&b, ", %d %s", n, strings.ToLower(sev))
		}
	}
	b.WriteString("\n")
	return b.String()
}
