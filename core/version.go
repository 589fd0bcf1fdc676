package core

import (
	"github.com/kolkov/enginecore/internal/core/alloctable"
	"github.com/kolkov/enginecore/internal/core/object"
)

// Version information for the engine runtime core.
const (
	// Version is the current version of the runtime core.
	Version = "0.3.0"

	VersionMajor = 0
	VersionMinor = 3
	VersionPatch = 0
)

// Info provides build information about the runtime core.
type Info struct {
	// Version is the runtime version string.
	Version string

	// ABI is the version stamped on exported type manifests. Manifests
	// import into registries with the same major and an equal or newer ABI.
	ABI string

	// PoolSize is the number of inline allocation table slots.
	PoolSize int
}

// GetInfo returns information about the runtime core.
//
// Example:
//
//	info := core.GetInfo()
//	fmt.Printf("enginecore %s (abi %s)\n", info.Version, info.ABI)
func GetInfo() Info {
	return Info{
		Version:  Version,
		ABI:      object.ABIVersion,
		PoolSize: alloctable.PoolSize,
	}
}
