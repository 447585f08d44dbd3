package domain

// Collection is the full ordered set of user records.
type Collection []User

// Document is the persisted layout: a single object holding every record.
type Document struct {
	Records Collection `json:"records"`
}

// Index returns the position of the record with the given id, or -1.
func (c Collection) Index(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	if c == nil {
		return Collection{}
	}
	out := make(Collection, len(c))
	for i, u := range c {
		out[i] = u.Clone()
	}
	return out
}
