package types

// Metadata represents a free-form set of key-value pairs attached to an entity
type Metadata map[string]string

// Copy returns a shallow copy of the metadata map
func (m Metadata) Copy() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
