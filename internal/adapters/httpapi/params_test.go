package httpapi

import (
	"errors"
	"net/url"
	"testing"

	"userdesk/internal/query"
	"userdesk/pkg/domain"
)

func TestParseListQuery(t *testing.T) {
	values, _ := url.ParseQuery("_page=3&_limit=5&_sort=email&_order=desc&q=ann&role=Editor&isActive=false")
	q, err := parseListQuery(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.Page != 3 || q.PageSize != 5 || q.SortField != "email" || q.Order != query.Desc || q.Term != "ann" {
		t.Fatalf("unexpected query %+v", q)
	}
	if q.Role == nil || *q.Role != domain.RoleEditor || q.Active == nil || *q.Active {
		t.Fatalf("unexpected filters %+v", q)
	}
}

func TestParseListQueryDefaults(t *testing.T) {
	values, _ := url.ParseQuery("_page=&role=&isActive=&_sort=")
	q, err := parseListQuery(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.Page != 0 || q.PageSize != 0 || q.Order != query.Asc || q.Role != nil || q.Active != nil || q.SortField != "" {
		t.Fatalf("empty values should be absent: %+v", q)
	}
}

func TestParseListQueryErrorsNameParam(t *testing.T) {
	values, _ := url.ParseQuery("_limit=0")
	_, err := parseListQuery(values)
	var pe *paramError
	if !errors.As(err, &pe) || pe.Param != paramLimit {
		t.Fatalf("expected _limit error, got %v", err)
	}
}
