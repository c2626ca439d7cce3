// Package catalog maps service identifiers to their display name and price.
package catalog

const (
	ServiceHome   = "home"
	ServiceOffice = "office"
	ServiceDeep   = "deep"
)

// Entry is one bookable service. Price is in whole currency units.
type Entry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

var entries = []Entry{
	{ID: ServiceHome, Name: "Home Cleaning", Price: 89},
	{ID: ServiceOffice, Name: "Office Cleaning", Price: 149},
	{ID: ServiceDeep, Name: "Deep Cleaning", Price: 199},
}

var byID = func() map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.ID] = e
	}
	return m
}()

// Lookup reports whether id is a known service.
func Lookup(id string) (Entry, bool) {
	e, ok := byID[id]
	return e, ok
}

// resolve never fails: unknown ids are priced and named as a home clean.
func resolve(id string) Entry {
	if e, ok := byID[id]; ok {
		return e
	}
	return byID[ServiceHome]
}

func PriceOf(id string) int { return resolve(id).Price }

func NameOf(id string) string { return resolve(id).Name }

// All returns the catalog in display order.
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
