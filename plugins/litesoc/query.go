package litesoc

// Query is an immutable set of query parameters.
type Query map[string]any

// With returns a copy of q with key set to value. q itself is not modified.
func (q Query) With(key string, value any) Query {
	out := make(Query, len(q)+1)
	for k, v := range q {
		out[k] = v
	}
	out[key] = value
	return out
}

// WithAll returns a copy of q with every entry of values set.
func (q Query) WithAll(values map[string]any) Query {
	out := make(Query, len(q)+len(values))
	for k, v := range q {
		out[k] = v
	}
	for k, v := range values {
		out[k] = v
	}
	return out
}
