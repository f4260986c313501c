package objgraph

import (
	"github.com/blang/semver/v4"
	"github.com/creachadair/mds/value"
	"github.com/danderson/objgraph/fragments"
	"go.uber.org/zap"
)

// Options configures a read or write session. A nil *Options is
// valid, and selects the defaults documented on each field.
type Options struct {
	// Version is the format version to write. Fields gated on a
	// newer version are omitted from the stream. Defaults to
	// [CurrentVersion]. Ignored when reading, the stream's header
	// decides.
	Version value.Maybe[semver.Version]
	// MaxVersion is the newest stream version a reader accepts.
	// Defaults to [CurrentVersion]. Ignored when writing.
	MaxVersion value.Maybe[semver.Version]
	// Order is the byte order to write. Defaults to the platform's
	// native order. Ignored when reading.
	Order fragments.ByteOrder
	// Types resolves type tags. Defaults to [Default].
	Types *Registry
	// Logger receives debug logs of every object read or written,
	// and warnings about lossy conversions. Defaults to a no-op
	// logger.
	Logger *zap.Logger
	// LongDoubles decides what a reader does with extended-precision
	// floats written in a layout other than float64. Defaults to
	// rejecting them.
	LongDoubles fragments.LongDoublePolicy
}

func (o *Options) version() semver.Version {
	if o == nil {
		return CurrentVersion
	}
	return o.Version.Or(CurrentVersion).Get()
}

func (o *Options) maxVersion() semver.Version {
	if o == nil {
		return CurrentVersion
	}
	return o.MaxVersion.Or(CurrentVersion).Get()
}

func (o *Options) order() fragments.ByteOrder {
	if o == nil || o.Order == nil {
		return fragments.NativeEndian
	}
	return o.Order
}

func (o *Options) types() *Registry {
	if o == nil || o.Types == nil {
		return Default
	}
	return o.Types
}

func (o *Options) logger() *zap.Logger {
	if o == nil || o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Options) longDoubles() fragments.LongDoublePolicy {
	if o == nil {
		return fragments.RejectLongDouble
	}
	return o.LongDoubles
}
