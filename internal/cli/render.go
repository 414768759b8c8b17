package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/arielspace/listing-board/internal/core/domain"
)

func renderListing(w io.Writer, l *Listing) {
	fmt.Fprintln(w, l.Title)
	fmt.Fprintln(w, strings.Repeat("=", len(l.Title)))
	fmt.Fprintln(w, l.ShortDescription)

	var meta []string
	if l.Location != nil {
		meta = append(meta, "Location: "+*l.Location)
	}
	if l.Duration != nil {
		meta = append(meta, "Duration: "+*l.Duration)
	}
	if l.Deadline != nil {
		meta = append(meta, "Deadline: "+*l.Deadline)
	}
	if l.HasCertification {
		meta = append(meta, "Certificate provided")
	}
	if len(meta) > 0 {
		fmt.Fprintln(w, strings.Join(meta, " | "))
	}
	fmt.Fprintln(w)
	renderDetails(w, l.FullDetails)
	fmt.Fprintf(w, "\nApply: %s\n", l.ApplyURL)
}

// renderDetails prints full details using the same block rules as the API.
func renderDetails(w io.Writer, full string) {
	for _, b := range domain.ParseDetails(full) {
		switch b.Kind {
		case domain.BlockHeading:
			fmt.Fprintf(w, "\n%s\n", strings.ToUpper(b.Text))
		case domain.BlockSubheading:
			fmt.Fprintf(w, "\n%s\n", b.Text)
		case domain.BlockBullet:
			fmt.Fprintf(w, "  * %s\n", b.Text)
		default:
			fmt.Fprintln(w, b.Text)
		}
	}
}
