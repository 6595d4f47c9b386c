package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/client/reconcile"
)

const timeLayout = "2006-01-02 15:04"

func shortAddress(a string) string {
	if len(a) <= 14 {
		return a
	}
	return a[:8] + "…" + a[len(a)-4:]
}

func moodBadge(m models.Mood) string {
	if m == "" {
		return "  "
	}
	return m.Present().Emoji
}

// printView lists entries one per line, preceded by a warning when the view
// does not come from the remote listing.
func printView(w io.Writer, v reconcile.View) {
	switch {
	case v.Status.RemoteErr != nil:
		fmt.Fprintln(w, "! remote listing unavailable, showing entries cached on this device")
	case v.Status.EmptyRemote:
		fmt.Fprintln(w, "! remote listing returned nothing, showing entries cached on this device")
	}

	if len(v.Entries) == 0 {
		fmt.Fprintln(w, "No entries.")
		return
	}
	for _, e := range v.Entries {
		line := fmt.Sprintf("%s %s  %s  [%s]", moodBadge(e.Entry.Mood), e.Entry.CreatedAt.Local().Format(timeLayout), e.Entry.Title, e.CID)
		if by := author(e.Entry); by != "" {
			line += "  by " + by
		}
		if e.Entry.ForSale {
			line += fmt.Sprintf("  for sale: %g", e.Entry.Price)
		}
		fmt.Fprintln(w, line)
	}
	if n := v.Status.Unresolvable; n > 0 {
		fmt.Fprintf(w, "(%d entries could not be fetched)\n", n)
	}
}

func author(e models.Entry) string {
	name, owner := e.PublicName(), e.PublicOwner()
	switch {
	case name != "" && owner != "":
		return fmt.Sprintf("%s (%s)", name, shortAddress(owner))
	case name != "":
		return name
	default:
		return shortAddress(owner)
	}
}

// printEntry shows a single entry in full.
func printEntry(w io.Writer, cid models.CID, e models.Entry) {
	fmt.Fprintf(w, "%s\n%s\n", e.Title, strings.Repeat("=", len([]rune(e.Title))))
	fmt.Fprintf(w, "CID:       %s\n", cid)
	fmt.Fprintf(w, "Written:   %s\n", e.CreatedAt.Local().Format(timeLayout))
	if e.Mood != "" {
		p := e.Mood.Present()
		fmt.Fprintf(w, "Mood:      %s %s (%s)\n", p.Emoji, p.Label, p.Color)
	}
	if e.Location != "" {
		fmt.Fprintf(w, "Location:  %s\n", e.Location)
	}
	if s := e.Sentiment; s != nil {
		fmt.Fprintf(w, "Sentiment: %s (%.0f%%)\n", s.Label, s.Score*100)
	}
	if by := author(e); by != "" {
		fmt.Fprintf(w, "Author:    %s\n", by)
	}
	if e.ForSale {
		fmt.Fprintf(w, "For sale:  %g\n", e.Price)
	}
	fmt.Fprintf(w, "\n%s\n", e.Body)
}
