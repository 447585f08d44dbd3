package query

import (
	"fmt"
	"math"
	"testing"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"userdesk/pkg/domain"
)

func fixture() domain.Collection {
	site := "https://zed.example"
	return domain.Collection{
		{ID: "1", Name: "Émile Zola", Username: "ezola", Email: "emile@example.com", Role: domain.RoleAdmin, IsActive: true, CreatedAt: "2024-01-03T00:00:00.000Z"},
		{ID: "2", Name: "anna bell", Username: "abell", Email: "anna@corp.io", Role: domain.RoleViewer, IsActive: false, Website: &site, CreatedAt: "2024-01-01T00:00:00.000Z"},
		{ID: "3", Name: "Bob Stone", Username: "bstone", Email: "bob@example.com", Role: domain.RoleEditor, IsActive: true, CreatedAt: "2024-01-02T00:00:00.000Z"},
		{ID: "4", Name: "Carla Diaz", Username: "cdiaz", Email: "carla@corp.io", Role: domain.RoleViewer, IsActive: true, CreatedAt: "2024-01-04T00:00:00.000Z"},
		{ID: "5", Name: "Dan Ek", Username: "dane", Email: "dan@example.com", Role: domain.RoleAdmin, IsActive: false, CreatedAt: "2024-01-05T00:00:00.000Z"},
	}
}

func ids(users []domain.User) string {
	out := ""
	for _, u := range users {
		out += u.ID
	}
	return out
}

func rolePtr(r domain.Role) *domain.Role { return &r }
func boolPtr(b bool) *bool              { return &b }

func TestApplyNoFiltersPagesWholeCollection(t *testing.T) {
	records := fixture()
	for size := 1; size <= 6; size++ {
		for page := 1; page <= 7; page++ {
			got := Apply(records, Query{Page: page, PageSize: size})
			if got.Total != len(records) {
				t.Fatalf("page %d size %d: total %d", page, size, got.Total)
			}
			want := len(records) - (page-1)*size
			if want > size {
				want = size
			}
			if want < 0 {
				want = 0
			}
			if len(got.Users) != want {
				t.Fatalf("page %d size %d: expected %d users, got %d", page, size, want, len(got.Users))
			}
		}
	}
}

func TestApplyDefaultsPageAndSize(t *testing.T) {
	records := make(domain.Collection, 25)
	for i := range records {
		records[i] = domain.User{ID: fmt.Sprintf("%02d", i)}
	}
	got := Apply(records, Query{})
	if len(got.Users) != DefaultPageSize || got.Users[0].ID != "00" || got.Total != 25 {
		t.Fatalf("unexpected default page: %d users, total %d", len(got.Users), got.Total)
	}
	got = Engine{DefaultPageSize: 20}.Apply(records, Query{Page: 2})
	if len(got.Users) != 5 || got.Users[0].ID != "20" {
		t.Fatalf("unexpected configured page: %s", ids(got.Users))
	}
}

func TestApplyOutOfRangePageIsEmpty(t *testing.T) {
	got := Apply(fixture(), Query{Page: 9, PageSize: 10})
	if got.Users == nil || len(got.Users) != 0 || got.Total != 5 {
		t.Fatalf("expected empty non-nil page with total 5, got %#v", got)
	}
}

func TestApplyHugePageOrSizeDoesNotOverflow(t *testing.T) {
	cases := []struct {
		name string
		q    Query
		want string
	}{
		{"max size first page", Query{Page: 1, PageSize: math.MaxInt}, "12345"},
		{"max size third page", Query{Page: 3, PageSize: math.MaxInt}, ""},
		{"wrapping offset", Query{Page: 1<<61 + 1, PageSize: 8}, ""},
		{"max page", Query{Page: math.MaxInt, PageSize: 2}, ""},
		{"last partial page", Query{Page: 3, PageSize: 2}, "5"},
	}
	for _, tc := range cases {
		got := Apply(fixture(), tc.q)
		if got.Users == nil || ids(got.Users) != tc.want || got.Total != 5 {
			t.Fatalf("%s: got %q total %d, want %q", tc.name, ids(got.Users), got.Total, tc.want)
		}
	}
}

func TestApplyTermMatchesNameEmailUsernameCaseInsensitive(t *testing.T) {
	cases := map[string]string{
		"CORP.IO": "24",
		"bstone":  "3",
		"ANNA":    "2",
		"example": "135",
		"zzz":     "",
		"":        "12345",
	}
	for term, want := range cases {
		if got := ids(Apply(fixture(), Query{Term: term}).Users); got != want {
			t.Fatalf("term %q: expected %q, got %q", term, want, got)
		}
	}
}

func TestApplyRoleFilterPartitions(t *testing.T) {
	records := fixture()
	seen := 0
	for _, role := range domain.Roles() {
		page := Apply(records, Query{Role: rolePtr(role), PageSize: 100})
		for _, u := range page.Users {
			if u.Role != role {
				t.Fatalf("role %s returned %s", role, u.Role)
			}
		}
		seen += page.Total
	}
	if seen != len(records) {
		t.Fatalf("role partitions cover %d of %d", seen, len(records))
	}
}

func TestApplyActiveFilter(t *testing.T) {
	if got := ids(Apply(fixture(), Query{Active: boolPtr(false)}).Users); got != "25" {
		t.Fatalf("inactive: got %q", got)
	}
	if got := ids(Apply(fixture(), Query{Active: boolPtr(true), Role: rolePtr(domain.RoleAdmin)}).Users); got != "1" {
		t.Fatalf("active admins: got %q", got)
	}
}

func TestApplyFilterRunsBeforePagination(t *testing.T) {
	got := Apply(fixture(), Query{Term: "example", Page: 2, PageSize: 2})
	if got.Total != 3 || ids(got.Users) != "5" {
		t.Fatalf("expected total 3 and user 5, got %d %q", got.Total, ids(got.Users))
	}
}

func TestApplySortByNameIsLocaleAware(t *testing.T) {
	got := Apply(fixture(), Query{SortField: "name", Order: Asc})
	if ids(got.Users) != "23451" {
		t.Fatalf("expected collation order 23451, got %s", ids(got.Users))
	}
	col := collate.New(language.English)
	for i := 1; i < len(got.Users); i++ {
		if col.CompareString(got.Users[i-1].Name, got.Users[i].Name) > 0 {
			t.Fatalf("not non-decreasing at %d", i)
		}
	}
	desc := Apply(fixture(), Query{SortField: "name", Order: Desc})
	if ids(desc.Users) != "15432" {
		t.Fatalf("desc should reverse asc, got %s", ids(desc.Users))
	}
}

func TestApplySortByBoolIsStable(t *testing.T) {
	got := Apply(fixture(), Query{SortField: "isActive"})
	if ids(got.Users) != "25134" {
		t.Fatalf("expected false first in stored order, got %s", ids(got.Users))
	}
	got = Apply(fixture(), Query{SortField: "isActive", Order: Desc})
	if ids(got.Users) != "13425" {
		t.Fatalf("expected true first in stored order, got %s", ids(got.Users))
	}
}

func TestApplySortMissingWebsiteReadsEmpty(t *testing.T) {
	got := Apply(fixture(), Query{SortField: "website", Order: Desc})
	if got.Users[0].ID != "2" {
		t.Fatalf("expected the only website first, got %s", ids(got.Users))
	}
}

func TestApplyUnknownSortKeepsStoredOrder(t *testing.T) {
	if got := ids(Apply(fixture(), Query{SortField: "skills"}).Users); got != "12345" {
		t.Fatalf("expected stored order, got %s", got)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	records := fixture()
	page := Apply(records, Query{SortField: "createdAt", Order: Desc})
	if ids(records) != "12345" {
		t.Fatalf("input reordered: %s", ids(records))
	}
	page.Users[0].Name = "changed"
	if records[4].Name == "changed" {
		t.Fatalf("page aliases input records")
	}
}

func TestParseActive(t *testing.T) {
	for _, v := range []any{true, "true"} {
		if b, err := ParseActive(v); err != nil || !b {
			t.Fatalf("ParseActive(%v) = %v, %v", v, b, err)
		}
	}
	for _, v := range []any{false, "false"} {
		if b, err := ParseActive(v); err != nil || b {
			t.Fatalf("ParseActive(%v) = %v, %v", v, b, err)
		}
	}
	for _, v := range []any{"yes", "TRUE", 1, nil} {
		if _, err := ParseActive(v); err == nil {
			t.Fatalf("ParseActive(%v) should fail", v)
		}
	}
}

func TestParseOrderAndRole(t *testing.T) {
	if o, err := ParseOrder(""); err != nil || o != Asc {
		t.Fatalf("empty order: %v %v", o, err)
	}
	if o, err := ParseOrder("desc"); err != nil || o != Desc {
		t.Fatalf("desc order: %v %v", o, err)
	}
	if _, err := ParseOrder("DESC"); err == nil {
		t.Fatalf("expected order error")
	}
	if _, err := ParseRole("Owner"); err == nil {
		t.Fatalf("expected role error")
	}
	if r, err := ParseRole("Editor"); err != nil || r != domain.RoleEditor {
		t.Fatalf("editor role: %v %v", r, err)
	}
}

func TestSortableFields(t *testing.T) {
	fields := SortableFields()
	if len(fields) != 10 || fields[0] != "createdAt" {
		t.Fatalf("unexpected sortable fields %v", fields)
	}
	if Sortable("address") || !Sortable("email") {
		t.Fatalf("unexpected sortable answers")
	}
}
