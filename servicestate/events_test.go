package servicestate_test

import (
	"testing"

	"github.com/next-trace/scg-service-state/contract/service"
	"github.com/next-trace/scg-service-state/servicestate"
)

func withPage(records ...service.Record) servicestate.State {
	s := servicestate.InitialState()
	s.QueryResult = &service.Page{Total: len(records), Limit: 10, Data: records}

	return s
}

func Test_EventsFoldIntoQueryResult(t *testing.T) {
	b := bind(t)
	s := withPage(service.Record{"id": 1, "text": "a"}, service.Record{"id": 2, "text": "b"})
	before := s.QueryResult

	s = b.Reducer(s, b.OnCreated(service.Record{"id": 3, "text": "c"}))
	if s.QueryResult.Total != 3 || s.QueryResult.Data[2]["text"] != "c" || s.QueryResult.Limit != 10 {
		t.Fatalf("created: %+v", s.QueryResult)
	}

	if before.Total != 2 || len(before.Data) != 2 {
		t.Fatalf("original page mutated: %+v", before)
	}

	s = b.Reducer(s, b.OnPatched(service.Record{"id": float64(2), "text": "B"}))
	if s.QueryResult.Data[1]["text"] != "B" || s.QueryResult.Total != 3 {
		t.Fatalf("patched: %+v", s.QueryResult)
	}

	s = b.Reducer(s, b.OnUpdated(service.Record{"id": 1, "text": "A"}))
	if s.QueryResult.Data[0]["text"] != "A" {
		t.Fatalf("updated: %+v", s.QueryResult)
	}

	s = b.Reducer(s, b.OnRemoved(service.Record{"id": 3}))
	if s.QueryResult.Total != 2 || len(s.QueryResult.Data) != 2 {
		t.Fatalf("removed: %+v", s.QueryResult)
	}
}

func Test_EventsWithoutMatchAreNoOps(t *testing.T) {
	b := bind(t)
	s := withPage(service.Record{"id": 1})
	qr := s.QueryResult

	s = b.Reducer(s, b.OnRemoved(service.Record{"id": 9}))
	s = b.Reducer(s, b.OnPatched(service.Record{"id": "1"}))

	if s.QueryResult != qr {
		t.Fatalf("unmatched events must leave the query result untouched")
	}

	empty := servicestate.InitialState()
	empty.QueryResult = nil

	if out := b.Reducer(empty, b.OnCreated(service.Record{"id": 1})); out.QueryResult != nil {
		t.Fatalf("events without a cached result are ignored")
	}
}

func Test_EventsCommuteForDistinctIDs(t *testing.T) {
	b := bind(t)
	base := withPage(service.Record{"id": 1, "v": 0}, service.Record{"id": 2, "v": 0})

	p1 := b.OnPatched(service.Record{"id": 1, "v": 1})
	p2 := b.OnPatched(service.Record{"id": 2, "v": 2})

	x := b.Reducer(b.Reducer(base, p1), p2)
	y := b.Reducer(b.Reducer(base, p2), p1)

	for i := range x.QueryResult.Data {
		if x.QueryResult.Data[i]["v"] != y.QueryResult.Data[i]["v"] {
			t.Fatalf("order dependent result at %d", i)
		}
	}
}

func Test_CustomIDField(t *testing.T) {
	b, err := servicestate.Bind(newApp(), "users", "", servicestate.Config{IDField: "_id"})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}

	s := withPage(service.Record{"_id": "a", "name": "x"})
	s = b.Reducer(s, b.OnRemoved(service.Record{"_id": "a"}))

	if s.QueryResult.Total != 0 || len(s.QueryResult.Data) != 0 {
		t.Fatalf("custom id field not honoured: %+v", s.QueryResult)
	}
}

func Test_LargeIntegerIDsStayDistinct(t *testing.T) {
	b := bind(t)

	const lo, hi int64 = 9007199254740992, 9007199254740993

	s := withPage(service.Record{"id": lo, "n": "a"}, service.Record{"id": hi, "n": "b"})

	patched := b.Reducer(s, b.OnPatched(service.Record{"id": hi, "n": "B"}))
	if d := patched.QueryResult.Data; d[0]["n"] != "a" || d[1]["n"] != "B" {
		t.Fatalf("patch touched the wrong record: %+v", d)
	}

	removed := b.Reducer(s, b.OnRemoved(service.Record{"id": hi}))
	if qr := removed.QueryResult; qr.Total != 1 || len(qr.Data) != 1 || qr.Data[0]["id"] != lo {
		t.Fatalf("remove must drop exactly one record: %+v", qr)
	}

	unsigned := b.Reducer(s, b.OnRemoved(service.Record{"id": uint64(lo)}))
	if qr := unsigned.QueryResult; qr.Total != 1 || qr.Data[0]["id"] != hi {
		t.Fatalf("uint64 id should match the equal int64: %+v", qr)
	}
}

type compositeID struct{ V any }

func Test_NonScalarIDsNeverMatch(t *testing.T) {
	b := bind(t)
	s := withPage(service.Record{"id": compositeID{V: []int{1}}})
	qr := s.QueryResult

	s = b.Reducer(s, b.OnRemoved(service.Record{"id": compositeID{V: []int{1}}}))
	s = b.Reducer(s, b.OnPatched(service.Record{"id": compositeID{V: []int{1}}, "x": 1}))

	if s.QueryResult != qr {
		t.Fatalf("non-scalar ids must leave the query result untouched")
	}
}
