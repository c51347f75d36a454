package model

// PropList is an ordered string-keyed parameter bag.
type PropList struct {
	keys   []string
	values map[string]string
}

func NewPropList() *PropList {
	return &PropList{values: make(map[string]string)}
}

// Set stores value under key. A key keeps the position of its first insertion.
func (p *PropList) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

func (p *PropList) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Value returns the value for key, or "" when absent.
func (p *PropList) Value(key string) string {
	return p.values[key]
}

func (p *PropList) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

func (p *PropList) Unset(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (p *PropList) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

func (p *PropList) Len() int {
	return len(p.keys)
}

func (p *PropList) Clone() *PropList {
	c := NewPropList()
	for _, k := range p.keys {
		c.Set(k, p.values[k])
	}
	return c
}
