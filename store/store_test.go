package store_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/next-trace/scg-service-state/contract/action"
	serr "github.com/next-trace/scg-service-state/contract/errors"
	"github.com/next-trace/scg-service-state/contract/service"
	"github.com/next-trace/scg-service-state/memory"
	"github.com/next-trace/scg-service-state/promise"
	"github.com/next-trace/scg-service-state/servicestate"
	"github.com/next-trace/scg-service-state/store"
)

func counter(state int, a action.Action) int {
	if a.Type == "INC" {
		return state + 1
	}

	return state
}

func Test_MiddlewareOrder(t *testing.T) {
	var order []string

	mw := func(name string) store.Middleware {
		return func(api store.API) func(next action.Dispatch) action.Dispatch {
			return func(next action.Dispatch) action.Dispatch {
				return func(a action.Action) *promise.Promise {
					order = append(order, name)
					return next(a)
				}
			}
		}
	}

	s := store.New(counter, 0, store.WithMiddleware(mw("first"), mw("second")))
	s.Dispatch(action.Action{Type: "INC"})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected order %v", order)
	}

	if s.State() != 1 {
		t.Fatalf("want 1, got %d", s.State())
	}
}

func Test_Subscribe(t *testing.T) {
	s := store.New(counter, 0)

	var calls atomic.Int32

	unsubscribe := s.Subscribe(func() { calls.Add(1) })

	s.Dispatch(action.Action{Type: "INC"})
	unsubscribe()
	s.Dispatch(action.Action{Type: "INC"})

	if calls.Load() != 1 || s.State() != 2 {
		t.Fatalf("calls=%d state=%d", calls.Load(), s.State())
	}
}

func Test_ThunkRunsDeferred(t *testing.T) {
	s := store.New(counter, 0, store.WithMiddleware(store.Thunk()))

	s.Dispatch(action.Action{Type: "LATER", Deferred: func(dispatch action.Dispatch, getState action.GetState) {
		if getState().(int) != 0 {
			t.Errorf("unexpected state before inc")
		}

		dispatch(action.Action{Type: "INC"})
		dispatch(action.Action{Type: "INC"})
	}})

	if s.State() != 2 {
		t.Fatalf("want 2, got %d", s.State())
	}

	plain := store.New(counter, 0)
	if v, _ := plain.Dispatch(action.Action{Type: "INC", Deferred: func(action.Dispatch, action.GetState) {}}).Wait(); v != nil || plain.State() != 0 {
		t.Fatalf("deferred actions must not reach the reducer without thunk")
	}
}

func Test_PromiseStages(t *testing.T) {
	var seen []string

	record := func(state []string, a action.Action) []string {
		seen = append(seen, a.Type)
		return state
	}

	s := store.New(record, nil, store.WithMiddleware(store.Promise(action.Suffixes{})))

	v, err := s.Dispatch(action.Action{Type: "LOAD", Payload: action.Async{Promise: promise.Resolve("ok")}}).Wait()
	if err != nil || v != "ok" {
		t.Fatalf("v=%v err=%v", v, err)
	}

	boom := errors.New("boom")
	if _, err := s.Dispatch(action.Action{Type: "SAVE", Payload: action.Async{Promise: promise.Reject(boom)}}).Wait(); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}

	want := []string{"LOAD_PENDING", "LOAD_FULFILLED", "SAVE_PENDING", "SAVE_REJECTED"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Fatalf("want %v, got %v", want, seen)
	}
}

func Test_LoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer

	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := store.New(counter, 0, store.WithMiddleware(store.Logger(l)))

	s.Dispatch(action.Action{Type: "INC"})

	out := buf.String()
	if !strings.Contains(out, "dispatching") || !strings.Contains(out, "type=INC") || !strings.Contains(out, "state=1") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func newServices(t *testing.T) (*store.Store[servicestate.Root], servicestate.Bundles) {
	t.Helper()

	app := memory.NewApp().
		Use("messages", memory.New("messages")).
		Use("users", memory.New("users"))

	bs, err := servicestate.BindAll(app, servicestate.RouteList("messages", "users"), servicestate.Config{})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}

	s := store.New(bs.Reducer(), bs.InitialState(),
		store.WithMiddleware(store.Thunk(), store.Promise(action.Suffixes{})))

	servicestate.BindDispatch(s.Dispatch, bs)

	return s, bs
}

func Test_CreateThenGetFlow(t *testing.T) {
	s, bs := newServices(t)
	messages := bs["messages"].Bound

	v, err := messages.Create(t.Context(), service.Record{"text": "hello"}, service.Params{}).Wait()
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if rec := v.(service.Record); rec["id"] != 1 {
		t.Fatalf("unexpected created record %v", rec)
	}

	st := s.State()["messages"]
	if !st.IsFinished || st.IsSaving || st.CreatePending || st.Data["text"] != "hello" || st.Data["id"] != 1 {
		t.Fatalf("unexpected state after create %+v", st)
	}

	if _, err := messages.Get(t.Context(), 999, service.Params{}).Wait(); err == nil {
		t.Fatalf("get 999 should fail")
	}

	st = s.State()["messages"]
	if st.IsError == nil || st.IsError.ClassName != serr.ClassNotFound || st.Data != nil {
		t.Fatalf("unexpected state after failed get %+v", st)
	}

	if sum := servicestate.Status(s.State(), "users", "messages"); sum.ServiceName != "messages" || sum.ClassName != serr.ClassNotFound {
		t.Fatalf("unexpected status %+v", sum)
	}
}

func Test_FindThenRealtimeEvent(t *testing.T) {
	s, bs := newServices(t)
	users := bs["users"]

	if _, err := users.Bound.Find(t.Context(), service.Params{}).Wait(); err != nil {
		t.Fatalf("find: %v", err)
	}

	s.Dispatch(users.OnCreated(service.Record{"id": 5, "name": "eve"}))

	qr := s.State()["users"].QueryResult
	if qr == nil || qr.Total != 1 || qr.Data[0]["name"] != "eve" {
		t.Fatalf("unexpected query result %+v", qr)
	}

	var handled bool

	s.Dispatch(users.On("typing", "x", func(event string, data any, dispatch action.Dispatch, getState action.GetState) {
		handled = getState().(servicestate.Root)["users"].QueryResult.Total == 1
		dispatch(users.Reset(true))
	}))

	if !handled {
		t.Fatalf("deferred handler did not run")
	}

	if st := s.State()["users"]; st.IsFinished || st.QueryResult.Total != 1 {
		t.Fatalf("reset with preserve: %+v", st)
	}
}
