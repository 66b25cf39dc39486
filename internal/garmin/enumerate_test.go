package garmin

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
)

func TestFetchPageArchivesRawResponse(t *testing.T) {
	page := `[{"activityId":1,"activityName":"Morning Run"},{"activityId":2,"activityName":"Evening Ride"}]`

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "activitylist-service") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("start") != "0" || r.URL.Query().Get("limit") != "2" {
			t.Fatalf("unexpected query %v", r.URL.Query())
		}
		w.Write([]byte(page))
	}))

	var archive bytes.Buffer
	enum := NewEnumerator(client, &archive, nil)

	items, err := enum.FetchPage(context.Background(), 0, 2)
	if err != nil {
		t.Fatalf("fetch page: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(items))
	}
	if items[0].ActivityID != 1 || items[1].ActivityName != "Evening Ride" {
		t.Fatalf("unexpected items %+v", items)
	}
	if archive.String() != page {
		t.Fatalf("raw page not archived verbatim: %q", archive.String())
	}
}

func TestFetchPageArchivesBeforeParseFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))

	var archive bytes.Buffer
	enum := NewEnumerator(client, &archive, nil)

	if _, err := enum.FetchPage(context.Background(), 0, 1); err == nil {
		t.Fatal("expected parse error")
	}
	if archive.Len() == 0 {
		t.Fatal("raw response should be archived even when parsing fails")
	}
}

func TestTotalReadsEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "activity-search-service-1.2") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "1" {
			t.Fatalf("probe should request one item, got %v", r.URL.Query())
		}
		w.Write([]byte(`{"results":{"totalFound":1289}}`))
	}))

	enum := NewEnumerator(client, nil, nil)
	total, err := enum.Total(context.Background())
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 1289 {
		t.Fatalf("expected 1289, got %d", total)
	}
}
