package service

// Record is one document exchanged with a remote service.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}

	return out
}

// Page is the collection shape returned by Find.
type Page struct {
	Total int      `json:"total"`
	Limit int      `json:"limit"`
	Skip  int      `json:"skip"`
	Data  []Record `json:"data"`
}

// EmptyPage is the empty-collection default.
func EmptyPage() *Page { return &Page{Data: []Record{}} }

// Query holds filter and paging operators for Find.
type Query map[string]any

// Params carries per-call parameters forwarded verbatim to the remote service.
type Params struct {
	Query   Query
	Headers map[string]string
}
