package customers

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PabloPavan/pharmaerp_api/internal/db"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
)

func TestListWhereCityIsLiteral(t *testing.T) {
	for _, city := range []string{"%", "_", "Lah%"} {
		q, err := db.BuildPageQuery(customerPage, listWhere(ListFilter{City: city}), paging.Filter{})
		if err != nil {
			t.Fatalf("build error: %v", err)
		}
		if strings.Contains(q.CountSQL, "ILIKE") {
			t.Fatalf("city %q matched as a pattern: %s", city, q.CountSQL)
		}
		if !strings.Contains(q.CountSQL, "lower(city) = lower($1)") {
			t.Fatalf("unexpected count sql: %s", q.CountSQL)
		}
		if !reflect.DeepEqual(q.Args, []any{city}) {
			t.Fatalf("unexpected args: %v", q.Args)
		}
	}
}

func TestListWhereCombinesFilters(t *testing.T) {
	active := true
	f := ListFilter{City: "Lahore", CustomerType: TypeHospital, IsActive: &active}

	q, err := db.BuildPageQuery(customerPage, listWhere(f), paging.Filter{})
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	want := "SELECT count(*) FROM customers WHERE lower(city) = lower($1) AND customer_type = $2 AND is_active = $3"
	if q.CountSQL != want {
		t.Fatalf("unexpected count sql:\n got %s\nwant %s", q.CountSQL, want)
	}
	if !reflect.DeepEqual(q.Args, []any{"Lahore", "hospital", true}) {
		t.Fatalf("unexpected args: %v", q.Args)
	}
}
