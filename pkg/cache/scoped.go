package cache

// ScopedKeyer namespaces every key of another Keyer, so results written by
// different releases or deployments never collide in a shared backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer prefixes the keys of inner, or of the default keyer when
// inner is nil.
//
//	keyer := NewScopedKeyer(nil, "poagraph:v1:")
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) MSAKey(inputHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.MSAKey(inputHash, opts)
}

func (k *ScopedKeyer) ConsensusKey(inputHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ConsensusKey(inputHash, opts)
}
