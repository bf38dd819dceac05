package compose

import (
	"fmt"
	"strings"

	"github.com/postium/postium/internal/model"
)

// forwardBody renders the quoted original for a forward draft.
func forwardBody(msg model.Message) string {
	var b strings.Builder
	b.WriteString("\n\n---------- Forwarded message ----------\n")
	fmt.Fprintf(&b, "From: %s\n", msg.From.Display())
	fmt.Fprintf(&b, "Date: %s\n", msg.Date.Format("Jan 2, 2006 3:04 PM"))
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	if len(msg.To) > 0 {
		addrs := make([]string, len(msg.To))
		for i, c := range msg.To {
			addrs[i] = c.Display()
		}
		fmt.Fprintf(&b, "To: %s\n", strings.Join(addrs, ", "))
	}
	b.WriteString("\n")
	b.WriteString(msg.Body)
	return b.String()
}
