package servicestate

import (
	"strings"

	"github.com/next-trace/scg-service-state/contract/action"
	"github.com/next-trace/scg-service-state/contract/service"
)

const typePrefix = "SERVICES_"

type stage int

const (
	stageCall stage = iota
	stagePending
	stageFulfilled
	stageRejected
)

type kind int

const (
	kindLifecycle kind = iota
	kindReset
	kindStore
	kindEvent
)

// entry is what the reducer needs to know about one action type.
type entry struct {
	kind   kind
	method Method
	stage  stage
	event  service.EventName
}

// actionTypes is the fixed table of type strings synthesized for one service.
type actionTypes struct {
	prefix string

	call      [methodCount]string
	pending   [methodCount]string
	fulfilled [methodCount]string
	rejected  [methodCount]string

	reset string
	store string
	on    map[service.EventName]string

	table map[string]entry
}

func newActionTypes(name string, s action.Suffixes) actionTypes {
	t := actionTypes{
		prefix: typePrefix + strings.ToUpper(name),
		on:     make(map[service.EventName]string, len(service.EventNames)),
		table:  make(map[string]entry, methodCount*4+2+len(service.EventNames)),
	}

	for _, m := range Methods {
		base := t.prefix + "_" + strings.ToUpper(m.String())

		t.call[m] = base
		t.pending[m] = s.PendingType(base)
		t.fulfilled[m] = s.FulfilledType(base)
		t.rejected[m] = s.RejectedType(base)

		t.table[t.call[m]] = entry{kind: kindLifecycle, method: m, stage: stageCall}
		t.table[t.pending[m]] = entry{kind: kindLifecycle, method: m, stage: stagePending}
		t.table[t.fulfilled[m]] = entry{kind: kindLifecycle, method: m, stage: stageFulfilled}
		t.table[t.rejected[m]] = entry{kind: kindLifecycle, method: m, stage: stageRejected}
	}

	t.reset = t.prefix + "_RESET"
	t.store = t.prefix + "_STORE"
	t.table[t.reset] = entry{kind: kindReset}
	t.table[t.store] = entry{kind: kindStore}

	for _, ev := range service.EventNames {
		t.on[ev] = t.onType(string(ev))
		t.table[t.on[ev]] = entry{kind: kindEvent, event: ev}
	}

	return t
}

// onType returns the type of a real-time event action.
func (t actionTypes) onType(event string) string {
	return t.prefix + "_ON_" + strings.ToUpper(event)
}
