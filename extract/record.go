package extract

// Record is one raw property or ad entry from the search response, opaque
// beyond the fields the matcher and extractor read. Every field access
// goes through a typed accessor: the source is adversarial and a field may
// be absent, a scalar, or an object from one payload to the next.
type Record map[string]interface{}

func (r Record) Str(key string) string {
	if r == nil {
		return ""
	}
	s, _ := r[key].(string)
	return s
}

// FirstStr returns the first non-empty string among the given keys.
func (r Record) FirstStr(keys ...string) string {
	for _, k := range keys {
		if s := r.Str(k); s != "" {
			return s
		}
	}
	return ""
}

func (r Record) Map(key string) (Record, bool) {
	if r == nil {
		return nil, false
	}
	m, ok := r[key].(map[string]interface{})
	if !ok {
		return nil, false
	}
	return Record(m), true
}

func (r Record) List(key string) ([]interface{}, bool) {
	if r == nil {
		return nil, false
	}
	l, ok := r[key].([]interface{})
	return l, ok
}

// Has reports whether the key is present at all, regardless of type.
func (r Record) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r[key]
	return ok
}

func (r Record) Value(key string) (interface{}, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	return v, ok
}

// Records coerces a []interface{} into Record entries, skipping anything
// that is not an object.
func Records(list []interface{}) []Record {
	var out []Record
	for _, item := range list {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, Record(m))
		}
	}
	return out
}
