package importer

import (
	"fmt"
	"strings"
)

// Kind enumerates the registered vendors. The constant order is the
// detection precedence used by DefaultRegistry.
type Kind int

const (
	KindHapoalim Kind = iota
	KindCal
	KindMax
	KindIsracard
	KindLeumi
	KindDiscount
)

// Kinds lists every vendor in detection precedence order.
var Kinds = []Kind{KindHapoalim, KindCal, KindMax, KindIsracard, KindLeumi, KindDiscount}

func (k Kind) String() string {
	switch k {
	case KindHapoalim:
		return "hapoalim"
	case KindCal:
		return "cal"
	case KindMax:
		return "max"
	case KindIsracard:
		return "isracard"
	case KindLeumi:
		return "leumi"
	case KindDiscount:
		return "discount"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// New returns the vendor implementation for k.
func New(k Kind) Vendor {
	switch k {
	case KindHapoalim:
		return &Hapoalim{}
	case KindCal:
		return &Cal{}
	case KindMax:
		return &Max{}
	case KindIsracard:
		return &Isracard{}
	case KindLeumi:
		return &Leumi{}
	case KindDiscount:
		return &Discount{}
	default:
		panic("unknown vendor kind: " + k.String())
	}
}

// Registry holds vendors in detection order.
type Registry struct {
	vendors []Vendor
	byName  map[string]Vendor
}

// NewRegistry creates an empty vendor registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Vendor)}
}

// Register appends a vendor after those already registered. Panics on a
// duplicate kind name.
func (r *Registry) Register(v Vendor) {
	key := strings.ToLower(v.Kind().String())
	if _, ok := r.byName[key]; ok {
		panic("duplicate vendor: " + key)
	}
	r.byName[key] = v
	r.vendors = append(r.vendors, v)
}

// Get returns the vendor registered under name, or nil.
func (r *Registry) Get(name string) Vendor {
	return r.byName[strings.ToLower(name)]
}

// All returns the vendors in detection order.
func (r *Registry) All() []Vendor {
	return r.vendors
}

// Detect tries each vendor that reads c's content kind, in registration
// order, and returns the first match with its identifier. No match yields
// (nil, ""), which callers treat as an unrecognized file, not an error.
func (r *Registry) Detect(fileName string, c Content) (Vendor, string) {
	for _, v := range r.vendors {
		if v.Accepts() != c.Kind {
			continue
		}
		if id, ok := v.Detect(fileName, c); ok && id != "" {
			return v, id
		}
	}
	return nil, ""
}

// DefaultRegistry returns a registry with every built-in vendor in
// precedence order.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, k := range Kinds {
		r.Register(New(k))
	}
	return r
}
