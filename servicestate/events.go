package servicestate

import "github.com/next-trace/scg-service-state/contract/service"

// fold applies a real-time event to the cached query result.
func (b *Bundle) fold(state State, ev service.EventName, payload any) State {
	rec, ok := eventRecord(payload)
	if !ok || state.QueryResult == nil {
		return state
	}

	qr := state.QueryResult
	id := rec[b.cfg.IDField]

	switch ev {
	case service.Created:
		data := make([]service.Record, 0, len(qr.Data)+1)
		data = append(data, qr.Data...)
		data = append(data, rec)
		state.QueryResult = &service.Page{Total: qr.Total + 1, Limit: qr.Limit, Skip: qr.Skip, Data: data}
	case service.Updated, service.Patched:
		data := make([]service.Record, len(qr.Data))
		matched := false

		for i, r := range qr.Data {
			if service.SameID(r[b.cfg.IDField], id) {
				data[i] = rec
				matched = true

				continue
			}

			data[i] = r
		}

		if !matched {
			return state
		}

		state.QueryResult = &service.Page{Total: qr.Total, Limit: qr.Limit, Skip: qr.Skip, Data: data}
	case service.Removed:
		data := make([]service.Record, 0, len(qr.Data))
		for _, r := range qr.Data {
			if !service.SameID(r[b.cfg.IDField], id) {
				data = append(data, r)
			}
		}

		if len(data) == len(qr.Data) {
			return state
		}

		state.QueryResult = &service.Page{Total: qr.Total - 1, Limit: qr.Limit, Skip: qr.Skip, Data: data}
	}

	return state
}

func eventRecord(payload any) (service.Record, bool) {
	switch p := payload.(type) {
	case EventPayload:
		return p.Data, p.Data != nil
	case *EventPayload:
		if p == nil || p.Data == nil {
			return nil, false
		}

		return p.Data, true
	default:
		return nil, false
	}
}
