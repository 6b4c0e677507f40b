package pagecache

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/paging"
)

func TestListKey(t *testing.T) {
	v := paging.Filter{PageNumber: 2, PageSize: 10, Search: "para", SortBy: "name"}.Values()
	v.Set("city", "Lahore")

	got := listKey("pharmaerp:cache:", "customers", 3, v)
	want := "pharmaerp:cache:customers:list:g3:city=Lahore&pageNumber=2&pageSize=10&search=para&sortBy=name"
	if got != want {
		t.Fatalf("unexpected key:\n got %s\nwant %s", got, want)
	}

	if listKey("p:", "customers", 4, v) == listKey("p:", "customers", 3, v) {
		t.Fatal("generation must change the key")
	}
	if listKey("p:", "items", 3, v) == listKey("p:", "customers", 3, v) {
		t.Fatal("entity must change the key")
	}
}

func TestListKeyOrderIndependent(t *testing.T) {
	a := url.Values{}
	a.Set("status", "draft")
	a.Set("customerId", "cus_1")
	b := url.Values{}
	b.Set("customerId", "cus_1")
	b.Set("status", "draft")

	if listKey("p:", "orders", 0, a) != listKey("p:", "orders", 0, b) {
		t.Fatal("keys differ for the same filter")
	}
}

func TestFetchDisabledCallsLoad(t *testing.T) {
	c := New[string](nil, "", "customers", time.Minute)

	calls := 0
	res, err := c.Fetch(context.Background(), url.Values{}, func(ctx context.Context) (paging.Result[string], error) {
		calls++
		return paging.NewResult([]string{"a"}, 1, paging.Filter{}), nil
	})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if calls != 1 || len(res.Items) != 1 {
		t.Fatalf("unexpected result: calls=%d items=%v", calls, res.Items)
	}
	if err := c.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate on disabled cache: %v", err)
	}
}

func TestFetchPropagatesLoadError(t *testing.T) {
	var c *Cache[string]
	boom := errors.New("boom")

	_, err := c.Fetch(context.Background(), nil, func(ctx context.Context) (paging.Result[string], error) {
		return paging.Result[string]{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
}
