package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey is the key of an encoded render of the document with the
	// given content hash.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change the encoded bytes.
type ArtifactKeyOpts struct {
	Format      string `json:"format"`
	JPEGQuality int    `json:"jpeg_quality,omitempty"`
	// Assets identifies the asset source, so renders against different asset
	// directories do not collide.
	Assets string `json:"assets,omitempty"`
	// Canvas describes decode limits that change the output size, such as a
	// forced canvas or a scale cap.
	Canvas string `json:"canvas,omitempty"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey returns "artifact:" followed by the digest of docHash and opts.
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	key := struct {
		Doc  string          `json:"doc"`
		Opts ArtifactKeyOpts `json:"opts"`
	}{docHash, opts}
	data, _ := json.Marshal(key)
	return "artifact:" + Hash(data)
}

// ScopedKeyer puts every key of an inner Keyer under a fixed prefix. The
// server scopes by build version, so a new release never serves bytes
// produced by an older engine:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.4.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

func (k ScopedKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(docHash, opts)
}

// Hash returns the hex SHA-256 of data. Badge documents are keyed by the
// hash of their raw bytes.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
