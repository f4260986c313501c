package objgraph

import (
	"math"

	"github.com/blang/semver/v4"
	"github.com/cockroachdb/errors"
)

// CurrentVersion is the newest format version this package reads and
// writes.
var CurrentVersion = semver.Version{Major: 1, Minor: 1, Patch: 0}

// Version returns the semver.Version for major.minor.patch.
func Version(major, minor, patch uint32) semver.Version {
	return semver.Version{Major: uint64(major), Minor: uint64(minor), Patch: uint64(patch)}
}

// checkWritable reports whether v can be recorded in a stream header.
func checkWritable(v semver.Version) error {
	if len(v.Pre) > 0 || len(v.Build) > 0 {
		return errors.Wrapf(ErrUnsupportedVersion, "version %s has pre-release or build metadata", v)
	}
	if v.Major > math.MaxUint32 || v.Minor > math.MaxUint32 || v.Patch > math.MaxUint32 {
		return errors.Wrapf(ErrUnsupportedVersion, "version %s does not fit the stream header", v)
	}
	return nil
}

// parseSince parses the version of a `objgraph:"since=X.Y.Z"` tag.
func parseSince(s string) (semver.Version, error) {
	v, err := semver.Parse(s)
	if err != nil {
		return semver.Version{}, err
	}
	if err := checkWritable(v); err != nil {
		return semver.Version{}, err
	}
	return v, nil
}
