package views

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"userdesk/pkg/domain"
)

// RenderDetail writes every field of u. Slots are shown in loc; nil means
// time.Local.
func RenderDetail(w io.Writer, u domain.User, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Name", u.Name},
		{"Username", u.Username},
		{"Email", u.Email},
		{"Phone", u.Phone},
		{"Website", u.WebsiteOrEmpty()},
		{"Role", string(u.Role)},
		{"Status", Status(u.IsActive)},
		{"Skills", listOr(u.Skills, "No skills")},
		{"Available Slots", listOr(localSlots(u.AvailableSlots, loc), "No slots available")},
		{"Company", u.Company.Name},
		{"Address", fmt.Sprintf("%s, %s, %s", u.Address.Street, u.Address.City, u.Address.Zipcode)},
		{"ID", u.ID},
		{"Created", u.CreatedAt},
		{"Updated", u.UpdatedAt},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

func listOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

// localSlots formats RFC 3339 slots in loc; unparsable values pass through.
func localSlots(slots []string, loc *time.Location) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			out[i] = s
			continue
		}
		out[i] = t.In(loc).Format("2006-01-02 15:04 MST")
	}
	return out
}
