package dedup

// Item is a dated bullet competing to represent a topic
type Item struct {
	Date string
	Text string
}

// String renders the item as "[date] text"
func (i Item) String() string {
	return "[" + i.Date + "] " + i.Text
}

// OrderedMap holds one Item per identity key. Iteration follows the order in
// which keys were first inserted; Upsert on an existing key replaces the value
// without moving it.
type OrderedMap struct {
	keys  []string
	items []Item
	index map[string]int
}

// NewOrderedMap creates an empty map
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{index: make(map[string]int)}
}

// Upsert stores it under key and reports whether an earlier value was replaced
func (m *OrderedMap) Upsert(key string, it Item) bool {
	if i, ok := m.index[key]; ok {
		m.items[i] = it
		return true
	}
	m.index[key] = len(m.items)
	m.keys = append(m.keys, key)
	m.items = append(m.items, it)
	return false
}

// Lookup returns the item stored under key
func (m *OrderedMap) Lookup(key string) (Item, bool) {
	i, ok := m.index[key]
	if !ok {
		return Item{}, false
	}
	return m.items[i], true
}

// Len returns the number of keys
func (m *OrderedMap) Len() int {
	return len(m.items)
}

// Keys returns keys in first-insertion order
func (m *OrderedMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Items returns values in first-insertion order
func (m *OrderedMap) Items() []Item {
	return append([]Item(nil), m.items...)
}
