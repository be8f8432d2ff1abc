package aisdecoder

import (
	"fmt"

	"github.com/bft-labs/aisdecoder/pkg/ais"
	"github.com/bft-labs/aisdecoder/pkg/envelope"
	"github.com/bft-labs/aisdecoder/pkg/log"
	"github.com/bft-labs/aisdecoder/pkg/reassembly"
)

// Version information for the aisdecoder module.
const (
	// Version is the current version of the aisdecoder module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)

type moduleVersion struct {
	version    string
	minVersion string
}

func modules() map[string]moduleVersion {
	return map[string]moduleVersion{
		"log":        {log.Version, log.MinCompatibleVersion},
		"reassembly": {reassembly.Version, reassembly.MinCompatibleVersion},
		"ais":        {ais.Version, ais.MinCompatibleVersion},
		"envelope":   {envelope.Version, envelope.MinCompatibleVersion},
	}
}

// ModuleVersions returns the version of every sub-module.
func ModuleVersions() map[string]string {
	out := map[string]string{"aisdecoder": Version}
	for name, m := range modules() {
		out[name] = m.version
	}
	return out
}

// CompatibilityMatrix returns the minimum compatible version of every sub-module.
func CompatibilityMatrix() map[string]string {
	out := map[string]string{"aisdecoder": MinCompatibleVersion}
	for name, m := range modules() {
		out[name] = m.minVersion
	}
	return out
}

// validateModuleVersions checks that all module versions are compatible.
// Returns an error if any module version is below its minimum compatible version.
func validateModuleVersions() error {
	for name, m := range modules() {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible checks if version >= minVersion using semantic versioning.
// Assumes versions are in format "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
