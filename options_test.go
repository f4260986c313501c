package objgraph

import (
	"testing"

	"github.com/blang/semver/v4"
	"github.com/creachadair/mds/value"
	"github.com/danderson/objgraph/fragments"
)

func TestOptionsDefaults(t *testing.T) {
	older := Version(1, 0, 4)
	newer := Version(2, 0, 0)
	tests := []struct {
		name        string
		opts        *Options
		wantVersion semver.Version
		wantMax     semver.Version
	}{
		{"nil", nil, CurrentVersion, CurrentVersion},
		{"zero", &Options{}, CurrentVersion, CurrentVersion},
		{"set", &Options{Version: value.Just(older), MaxVersion: value.Just(newer)}, older, newer},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.opts.version(); !got.EQ(tc.wantVersion) {
				t.Errorf("version() = %s, want %s", got, tc.wantVersion)
			}
			if got := tc.opts.maxVersion(); !got.EQ(tc.wantMax) {
				t.Errorf("maxVersion() = %s, want %s", got, tc.wantMax)
			}
			if got := tc.opts.order(); got != fragments.NativeEndian {
				t.Errorf("order() = %v, want NativeEndian", got)
			}
			if got := tc.opts.types(); got != Default {
				t.Errorf("types() is not Default")
			}
			if tc.opts.logger() == nil {
				t.Errorf("logger() is nil")
			}
		})
	}
}
