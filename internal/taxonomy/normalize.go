package taxonomy

// Normalize forces a free-form category into the taxonomy. The result is
// always canonical:
//
//   - empty input yields the default category
//   - a canonical name is returned unchanged
//   - a localized or differently spelled label yields its canonical target
//   - anything else yields the default category
func (r *Registry) Normalize(raw string) string {
	if raw == "" {
		return r.def
	}
	if r.Contains(raw) {
		return raw
	}
	if mapped, ok := r.lookup[foldKey(raw)]; ok && r.Contains(mapped) {
		return mapped
	}
	return r.def
}
