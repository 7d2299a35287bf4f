package hmacauth

import (
	"fmt"
	"hash"
	"maps"
	"slices"
)

// versions maps protocol version numbers to signer constructors.
var versions = map[int]SignerFactory{
	1: func(digest func() hash.Hash) Signer { return NewV1Signer(digest) },
	2: func(digest func() hash.Hash) Signer { return NewV2Signer(digest) },
}

// Identifier picks the signer that produced an Authorization header.
type Identifier struct {
	signers []Signer
}

// NewIdentifier instantiates one signer per known version in
// [minVersion, maxVersion]. Unknown versions in the range are skipped.
func NewIdentifier(digest func() hash.Hash, minVersion, maxVersion int) (*Identifier, error) {
	if minVersion > maxVersion {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidVersionRange, minVersion, maxVersion)
	}

	id := &Identifier{}

	for _, v := range slices.Sorted(maps.Keys(versions)) {
		if v < minVersion || v > maxVersion {
			continue
		}

		id.signers = append(id.signers, versions[v](digest))
	}

	return id, nil
}

// NewSignerIdentifier builds an Identifier over explicit signers, checked
// in the given order. It lets callers use signers configured with options.
func NewSignerIdentifier(signers ...Signer) *Identifier {
	return &Identifier{signers: slices.Clone(signers)}
}

// Identify returns the first signer, lowest version first, whose Matches
// accepts header, or nil.
func (id *Identifier) Identify(header string) Signer {
	for _, s := range id.signers {
		if s.Matches(header) {
			return s
		}
	}

	return nil
}

// Signers returns the instantiated signers in match order.
func (id *Identifier) Signers() []Signer {
	return slices.Clone(id.signers)
}
