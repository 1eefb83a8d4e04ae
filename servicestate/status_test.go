package servicestate_test

import (
	"testing"

	serr "github.com/next-trace/scg-service-state/contract/errors"
	"github.com/next-trace/scg-service-state/servicestate"
)

func Test_Status(t *testing.T) {
	idle := servicestate.InitialState()

	loading := idle
	loading.IsLoading = true

	saving := idle
	saving.IsSaving = true

	failed := idle
	failed.IsError = serr.NotFound("no user 7")

	generic := idle
	generic.IsError = serr.General(serr.GenericMessage)
	generic.IsSaving = true

	blank := idle
	blank.IsError = &serr.ServiceError{}

	both := idle
	both.IsLoading, both.IsSaving = true, true

	cases := []struct {
		name   string
		states map[string]servicestate.State
		names  []string
		want   servicestate.Summary
	}{
		{
			name:   "idle",
			states: map[string]servicestate.State{"users": idle},
			names:  []string{"users"},
		},
		{
			name:   "error beats earlier activity",
			states: map[string]servicestate.State{"messages": loading, "users": failed},
			names:  []string{"messages", "users"},
			want:   servicestate.Summary{Message: "users: no user 7", ClassName: serr.ClassNotFound, ServiceName: "users"},
		},
		{
			name:   "first active wins",
			states: map[string]servicestate.State{"messages": saving, "users": loading},
			names:  []string{"messages", "users"},
			want:   servicestate.Summary{Message: "messages is saving", ClassName: servicestate.ClassSaving, ServiceName: "messages"},
		},
		{
			name:   "generic error ignored",
			states: map[string]servicestate.State{"users": generic},
			names:  []string{"users"},
			want:   servicestate.Summary{Message: "users is saving", ClassName: servicestate.ClassSaving, ServiceName: "users"},
		},
		{
			name:   "empty message ignored",
			states: map[string]servicestate.State{"users": blank},
			names:  []string{"users"},
		},
		{
			name:   "loading before saving",
			states: map[string]servicestate.State{"users": both},
			names:  []string{"users"},
			want:   servicestate.Summary{Message: "users is loading", ClassName: servicestate.ClassLoading, ServiceName: "users"},
		},
		{
			name:   "unknown names skipped",
			states: map[string]servicestate.State{"users": loading},
			names:  []string{"ghost", "users"},
			want:   servicestate.Summary{Message: "users is loading", ClassName: servicestate.ClassLoading, ServiceName: "users"},
		},
		{
			name:   "unlisted services ignored",
			states: map[string]servicestate.State{"users": failed},
			names:  []string{"messages"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := servicestate.Status(tc.states, tc.names...); got != tc.want {
				t.Fatalf("want %+v, got %+v", tc.want, got)
			}
		})
	}
}
