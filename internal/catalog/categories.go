package catalog

// UnknownGroup labels items whose category id the provider did not list.
const UnknownGroup = "Unknown"

// Categories is an insertion-ordered category id -> name map.
type Categories struct {
	ids   []string
	names map[string]string
}

// NewCategories returns an empty map ready for Add.
func NewCategories() Categories {
	return Categories{names: make(map[string]string)}
}

// Add records id -> name. A repeated id keeps its first position but takes the new name.
func (c *Categories) Add(id, name string) {
	if c.names == nil {
		c.names = make(map[string]string)
	}
	if _, ok := c.names[id]; !ok {
		c.ids = append(c.ids, id)
	}
	c.names[id] = name
}

// Len returns the number of categories.
func (c Categories) Len() int { return len(c.ids) }

// IDs returns category ids in provider order.
func (c Categories) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Name looks up a category name.
func (c Categories) Name(id string) (string, bool) {
	n, ok := c.names[id]
	return n, ok
}

// Resolve returns the category name for id, or UnknownGroup when id is not listed
// or listed without a name.
func (c Categories) Resolve(id string) string {
	if n, ok := c.names[id]; ok && n != "" {
		return n
	}
	return UnknownGroup
}

// Names returns category names in provider order.
func (c Categories) Names() []string {
	out := make([]string, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.names[id])
	}
	return out
}
