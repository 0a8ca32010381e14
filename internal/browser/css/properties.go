// internal/browser/css/properties.go
package css

import (
	"iter"
	"slices"
	"strings"
)

// PropertyMap is an ordered mapping of CSS property names to value strings. Keys are
// stored in canonical hyphenated lowercase form, so 'borderBottomColor' and
// 'border-bottom-color' address the same entry. The zero value is ready to use.
type PropertyMap struct {
	order  []string
	values map[string]string
}

// NewPropertyMap returns an empty map.
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{values: make(map[string]string)}
}

// Set stores value under name. Re-setting an existing property keeps its original
// position.
func (m *PropertyMap) Set(name, value string) {
	key := CanonicalName(name)
	if key == "" {
		return
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, exists := m.values[key]; !exists {
		m.order = append(m.order, key)
	}
	m.values[key] = value
}

// Get returns the value stored under name.
func (m *PropertyMap) Get(name string) (string, bool) {
	if m == nil || m.values == nil {
		return "", false
	}
	v, ok := m.values[CanonicalName(name)]
	return v, ok
}

// Value returns the value stored under name, or "" when absent.
func (m *PropertyMap) Value(name string) string {
	v, _ := m.Get(name)
	return v
}

// Delete removes name and reports whether it was present.
func (m *PropertyMap) Delete(name string) bool {
	if m == nil || m.values == nil {
		return false
	}
	key := CanonicalName(name)
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	m.order = slices.DeleteFunc(m.order, func(k string) bool { return k == key })
	return true
}

// Len returns the number of properties.
func (m *PropertyMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// All yields the properties in insertion order.
func (m *PropertyMap) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if m == nil {
			return
		}
		for _, k := range m.order {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Names returns the property names in sorted order.
func (m *PropertyMap) Names() []string {
	if m == nil {
		return nil
	}
	names := slices.Clone(m.order)
	slices.Sort(names)
	return names
}

// Merge copies every entry of other into m, overwriting existing values.
func (m *PropertyMap) Merge(other *PropertyMap) {
	for k, v := range other.All() {
		m.Set(k, v)
	}
}

// Clone returns an independent copy.
func (m *PropertyMap) Clone() *PropertyMap {
	c := NewPropertyMap()
	c.Merge(m)
	return c
}

// Text serializes the map as a declaration block, e.g. 'color: red; width: 10px'.
func (m *PropertyMap) Text() string {
	var sb strings.Builder
	for k, v := range m.All() {
		if sb.Len() > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(v)
	}
	return sb.String()
}

// CanonicalName converts a script-style camel-case property name to its CSS form:
// 'backgroundColor' becomes 'background-color', 'cssFloat' becomes 'float' and
// 'WebkitTransform' becomes '-webkit-transform'. Hyphenated names are only lowercased;
// custom properties ('--x') are returned unchanged.
func CanonicalName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "--") {
		return name
	}
	if name == "cssFloat" || name == "styleFloat" {
		return "float"
	}
	if strings.ContainsRune(name, '-') {
		return strings.ToLower(name)
	}

	var sb strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 || isVendorPrefix(name) {
				sb.WriteByte('-')
			}
			sb.WriteRune(r + ('a' - 'A'))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// CamelName is the inverse of CanonicalName for script-visible property names.
func CamelName(name string) string {
	if name == "float" {
		return "cssFloat"
	}
	if strings.HasPrefix(name, "--") {
		return name
	}
	name = strings.TrimPrefix(name, "-")
	var sb strings.Builder
	upper := false
	for _, r := range name {
		if r == '-' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		sb.WriteRune(r)
	}
	return sb.String()
}

func isVendorPrefix(name string) bool {
	for _, p := range []string{"Webkit", "Moz", "Ms", "O"} {
		if strings.HasPrefix(name, p) && len(name) > len(p) && name[len(p)] >= 'A' && name[len(p)] <= 'Z' {
			return true
		}
	}
	return false
}
