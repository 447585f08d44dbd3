// Package views renders users for the terminal client and turns command
// line input into API payloads.
package views

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"userdesk/pkg/domain"
)

// Status is the label shown for the isActive flag.
func Status(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

func sortMark(column, sortField, order string) string {
	if column != sortField {
		return ""
	}
	if order == "desc" {
		return " ▼"
	}
	return " ▲"
}

// RenderList writes the users table. The sort column carries an arrow.
func RenderList(w io.Writer, users []domain.User, sortField, order string) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(w, "No users found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "NAME%s\tEMAIL%s\tROLE\tSTATUS\tID\n",
		sortMark("name", sortField, order), sortMark("email", sortField, order))
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.Name, u.Email, u.Role, Status(u.IsActive), u.ID)
	}
	return tw.Flush()
}

// RenderSummary writes the one-line result header shown above a page.
func RenderSummary(w io.Writer, total, page, totalPages int, filters []string) error {
	line := fmt.Sprintf("%d user%s, page %d of %d", total, plural(total), page, totalPages)
	if len(filters) > 0 {
		line += " (" + strings.Join(filters, ", ") + ")"
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
