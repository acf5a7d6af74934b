package draft

import "sync/atomic"

// AssetState identifies which of the three legal states an asset field is in.
type AssetState int

const (
	AssetEmpty        AssetState = iota // No value
	AssetLocalPending                   // Raw binary selected locally, not yet persisted
	AssetRemote                         // Durable reference string, persisted server-side
)

// String returns the string representation of an asset state.
func (s AssetState) String() string {
	switch s {
	case AssetEmpty:
		return "empty"
	case AssetLocalPending:
		return "local-pending"
	case AssetRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// tokenCounter issues unique tokens for local-pending assets. Tokens let
// async consumers (preview decoding) detect that the field was replaced
// while they were in flight.
var tokenCounter atomic.Uint64

// Asset is a user-supplied binary or its durable reference. The zero value
// is the empty asset. An asset value is immutable once constructed; replacing
// a field means constructing a new asset, which carries a fresh token.
type Asset struct {
	state AssetState
	name  string // original filename (local-pending only)
	data  []byte // raw bytes (local-pending only)
	ref   string // durable reference (remote only)
	token uint64 // identity guard for in-flight async work
}

// LocalAsset constructs a local-pending asset from a selected file.
func LocalAsset(name string, data []byte) Asset {
	return Asset{
		state: AssetLocalPending,
		name:  name,
		data:  data,
		token: tokenCounter.Add(1),
	}
}

// RemoteAsset constructs a remote asset from a durable reference string.
func RemoteAsset(ref string) Asset {
	if ref == "" {
		return Asset{}
	}
	return Asset{
		state: AssetRemote,
		ref:   ref,
		token: tokenCounter.Add(1),
	}
}

// State returns the asset's state tag.
func (a Asset) State() AssetState { return a.state }

// IsEmpty reports whether the asset holds no value.
func (a Asset) IsEmpty() bool { return a.state == AssetEmpty }

// Name returns the original filename of a local-pending asset.
func (a Asset) Name() string { return a.name }

// Data returns the raw bytes of a local-pending asset.
func (a Asset) Data() []byte { return a.data }

// Ref returns the durable reference of a remote asset.
func (a Asset) Ref() string { return a.ref }

// Token returns the identity token assigned when the asset was constructed.
// Zero for the empty asset.
func (a Asset) Token() uint64 { return a.token }
