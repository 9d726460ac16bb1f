// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package settings

// Overlay reads from Override first and falls back to Base. Writes go to
// Base and clear any override for the key, so a value set during the
// process is the one subsequently read.
type Overlay struct {
	Override *MemoryStore
	Base     Store
}

// NewOverlay returns an Overlay whose overrides are the non-empty entries
// of values.
func NewOverlay(base Store, values map[string]string) *Overlay {
	return &Overlay{Override: NewMemoryStore(values), Base: base}
}

// Get returns the override for key if set, else the base value.
func (o *Overlay) Get(key string) (string, bool) {
	if v, ok := o.Override.Get(key); ok {
		return v, true
	}
	return o.Base.Get(key)
}

// Set persists value to the base store.
func (o *Overlay) Set(key, value string) error {
	if err := o.Base.Set(key, value); err != nil {
		return err
	}
	return o.Override.Set(key, "")
}
