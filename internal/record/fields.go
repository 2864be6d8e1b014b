package record

// Value is a persisted column value: string, int64, float64, bool or nil.
// Restricting values to comparable scalars keeps field diffing a plain ==.
type Value any

// Fields is an insertion-ordered name→value map representing every persisted
// column of a record. Like a map, a Fields value shares its storage when
// copied.
type Fields struct {
	names  []string
	values map[string]Value
}

// NewFields returns an empty field map.
func NewFields() Fields {
	return Fields{values: make(map[string]Value)}
}

// Set adds or replaces a field, preserving first-insertion order.
func (f *Fields) Set(name string, v Value) {
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = v
}

// Get returns the value for name, or nil if absent.
func (f Fields) Get(name string) Value {
	return f.values[name]
}

// Has reports whether the field is present.
func (f Fields) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

// Names returns the field names in insertion order.
func (f Fields) Names() []string {
	return f.names
}

// Len returns the number of fields.
func (f Fields) Len() int {
	return len(f.names)
}

// Clone returns a deep copy that does not share storage.
func (f Fields) Clone() Fields {
	c := NewFields()
	for _, name := range f.names {
		c.Set(name, f.values[name])
	}
	return c
}

// Equal reports whether both field maps hold the same names and values,
// ignoring order.
func (f Fields) Equal(other Fields) bool {
	if len(f.names) != len(other.names) {
		return false
	}
	for name, v := range f.values {
		ov, ok := other.values[name]
		if !ok || ov != v {
			return false
		}
	}
	return true
}
