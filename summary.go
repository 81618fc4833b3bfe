package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chazu/shadecut/pkg/contact"
)

// writeSummary prints the feedback lines for a result: the glass cover
// (or the lack of a side intersection) and the pane cut sizes.
func writeSummary(w io.Writer, r Result) error {
	var b strings.Builder

	if !r.Valid() {
		b.WriteString("Invalid geometry\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  %s\n", e.Error())
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	switch r.Contact.Outcome {
	case contact.NoContact:
		b.WriteString("No Side Intersection\n")
	case contact.Cylinder:
		fmt.Fprintf(&b, "Height of glass covered = %.2f (cylinder, rim touches the whole wall)\n", r.Contact.CoveredHeight)
	default:
		fmt.Fprintf(&b, "Height of glass covered = %.2f\n", r.Contact.CoveredHeight)
		fmt.Fprintf(&b, "Contact height = %.2f\n", r.Contact.ContactHeight)
	}

	fmt.Fprintf(&b, "Shade top length = %.1f\n", r.Panes.TopWidth)
	fmt.Fprintf(&b, "Shade bottom length = %.1f\n", r.Panes.BottomWidth)
	fmt.Fprintf(&b, "Shade length = %.1f\n", r.Panes.PaneLength)
	fmt.Fprintf(&b, "Side edge = %.1f (%d panes)\n", r.Panes.SideEdge, r.Panes.Panes)

	for _, warn := range r.Warnings {
		fmt.Fprintf(&b, "warning: %s: %s\n", warn.Field, warn.Message)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
