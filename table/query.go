// Single and multi record lookups over the cache.

package table

// GetRecord returns a clone of the first record, in sheet order, whose field
// strictly equals value.
//
// It returns ErrInvalidInput for an empty field or value, ErrFieldNotFound
// when field is not in the header and ErrNotFound when nothing matches.
func (t *Table) GetRecord(field string, value any) (Record, error) {
	if field == "" || isEmptyValue(value) {
		return nil, ErrInvalidInput
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, err := t.find(field, value)
	if err != nil {
		return nil, err
	}
	return t.records[i].Clone(), nil
}

// GetRecords returns clones of the records matching every recognized key of
// q, in sheet order. A nil or empty query returns every record. Keys that are
// not fields are ignored.
func (t *Table) GetRecords(q Query) []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	preds := t.compile(q)
	out := make([]Record, 0, len(t.records))
	for _, r := range t.records {
		if matchesAll(r, preds) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// predicate accepts a record whose field equals one of values.
type predicate struct {
	field  string
	values []any
}

// compile turns q into predicates over recognized fields, normalizing every
// value the same way cells were normalized at load.
func (t *Table) compile(q Query) []predicate {
	var preds []predicate
	for field, v := range q {
		if !t.hasField(field) {
			continue
		}
		members, ok := setMembers(v)
		if !ok {
			members = []any{v}
		}
		for i := range members {
			members[i] = t.norm.apply(members[i])
		}
		preds = append(preds, predicate{field: field, values: members})
	}
	return preds
}

func matchesAll(r Record, preds []predicate) bool {
	for i := range preds {
		if !preds[i].matches(r) {
			return false
		}
	}
	return true
}

func (p *predicate) matches(r Record) bool {
	for _, v := range p.values {
		if valuesEqual(r[p.field], v) {
			return true
		}
	}
	return false
}
