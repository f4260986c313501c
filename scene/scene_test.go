package scene_test

import (
	"testing"

	"github.com/creachadair/mds/value"
	"github.com/danderson/objgraph"
	"github.com/danderson/objgraph/objgraphtest"
	"github.com/danderson/objgraph/scene"
	"github.com/google/go-cmp/cmp"
)

func versionOpts(major, minor, patch uint32) *objgraph.Options {
	return &objgraph.Options{
		Version: value.Just(objgraph.Version(major, minor, patch)),
	}
}

func testShaderSet() *scene.ShaderSet {
	vert := &scene.ShaderStage{
		Stage:          1,
		EntryPoint:     "main",
		Source:         "void main() {}",
		Specialization: map[uint32]int32{0: 4, 3: -1},
	}
	frag := &scene.ShaderStage{
		Stage:      0x10,
		EntryPoint: "main",
		Source:     "void main() { discard; }",
	}
	hints := &scene.ShaderCompileSettings{
		VulkanVersion: 1 << 22,
		Language:      1,
		Optimize:      true,
		Defines:       []string{"VSG_LIGHTING"},
	}
	return &scene.ShaderSet{
		Stages:             []*scene.ShaderStage{vert, frag},
		DefaultShaderHints: hints,
		AttributeBindings: []scene.AttributeBinding{
			{Name: "vsg_Vertex", Location: 0, Format: 106, Data: &scene.Vec3Array{Values: [][3]float32{{1, 2, 3}}}},
			{Name: "vsg_Color", Define: "VSG_COLOR", Location: 3, Format: 109},
		},
		BufferBindings: []scene.BufferBinding{
			{Name: "material", Set: 1, Binding: 10, DescriptorType: 6, DescriptorCount: 1, StageFlags: 0x10, Data: &scene.FloatArray{Values: []float32{0.5, 1}}},
		},
		PushConstantRanges: []scene.PushConstantRange{
			{Name: "pc", StageFlags: 0x11, Size: 128},
		},
		DefinesArrayStates: []scene.DefinesArrayState{
			{Defines: []string{"VSG_INSTANCE_POSITIONS"}},
		},
		OptionalDefines: []string{"VSG_GREYSCALE", "VSG_TWO_SIDED"},
		Variants: []scene.ShaderVariant{
			{Hints: hints, Stages: []*scene.ShaderStage{vert}},
		},
		CustomDescriptorSetBindings: []scene.DescriptorSetBinding{
			&scene.CustomDescriptorSetBinding{Set: 2},
			&scene.ViewDependentStateBinding{CustomDescriptorSetBinding: scene.CustomDescriptorSetBinding{Set: 1}},
			&scene.CustomDescriptorSetBinding{Set: 3},
		},
	}
}

func TestShaderSetRoundTrip(t *testing.T) {
	in := testShaderSet()
	got := objgraphtest.RoundTrip(t, in, nil)
	if diff := cmp.Diff(got, in); diff != "" {
		t.Errorf("round trip changed shader set (-got+want):\n%s", diff)
	}

	if got.Stages[0] != got.Variants[0].Stages[0] {
		t.Errorf("shared shader stage decoded as two objects")
	}
	if got.DefaultShaderHints != got.Variants[0].Hints {
		t.Errorf("shared compile settings decoded as two objects")
	}
	if n := len(got.CustomDescriptorSetBindings); n != 3 {
		t.Fatalf("got %d custom descriptor set bindings, want 3", n)
	}
	for i, want := range []uint32{2, 1, 3} {
		if got := got.CustomDescriptorSetBindings[i].SetIndex(); got != want {
			t.Errorf("binding %d set index = %d, want %d", i, got, want)
		}
	}
}

func TestShaderSetNullBindings(t *testing.T) {
	in := &scene.ShaderSet{
		CustomDescriptorSetBindings: []scene.DescriptorSetBinding{
			nil,
			&scene.CustomDescriptorSetBinding{Set: 4},
			nil,
		},
	}
	got := objgraphtest.RoundTrip(t, in, nil)
	want := &scene.ShaderSet{
		CustomDescriptorSetBindings: []scene.DescriptorSetBinding{
			&scene.CustomDescriptorSetBinding{Set: 4},
		},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("null bindings not dropped (-got+want):\n%s", diff)
	}

	allNull := &scene.ShaderSet{
		CustomDescriptorSetBindings: []scene.DescriptorSetBinding{nil},
	}
	got = objgraphtest.RoundTrip(t, allNull, nil)
	if got.CustomDescriptorSetBindings != nil {
		t.Errorf("got bindings %v, want nil", got.CustomDescriptorSetBindings)
	}
}

func TestShaderSetVersions(t *testing.T) {
	tests := []struct {
		name         string
		opts         *objgraph.Options
		wantHints    bool
		wantBindings bool
	}{
		{"1.0.3", versionOpts(1, 0, 3), false, false},
		{"1.0.4", versionOpts(1, 0, 4), true, false},
		{"1.0.8", versionOpts(1, 0, 8), true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			set := testShaderSet()
			after := &scene.FloatArray{Values: []float32{42}}
			root := &scene.Group{Children: []objgraph.Object{set, after}}

			got := objgraphtest.RoundTrip(t, root, tc.opts)
			if n := len(got.Children); n != 2 {
				t.Fatalf("got %d children, want 2", n)
			}
			gotSet, ok := got.Children[0].(*scene.ShaderSet)
			if !ok {
				t.Fatalf("first child is %T, want *scene.ShaderSet", got.Children[0])
			}

			want := testShaderSet()
			if !tc.wantHints {
				want.DefaultShaderHints = nil
			}
			if !tc.wantBindings {
				want.CustomDescriptorSetBindings = nil
			}
			if diff := cmp.Diff(gotSet, want); diff != "" {
				t.Errorf("shader set mismatch (-got+want):\n%s", diff)
			}
			// Fields after the shader set must still line up.
			if diff := cmp.Diff(got.Children[1], objgraph.Object(after)); diff != "" {
				t.Errorf("trailing child mismatch (-got+want):\n%s", diff)
			}
		})
	}
}

func TestFileReference(t *testing.T) {
	in := &scene.FileReference{
		Path:       "textures/wood.png",
		Label:      []rune("木目"),
		Scale:      [4]float64{1, 1, 1, 0.25},
		Checksum:   []byte{0xde, 0xad, 0xbe, 0xef},
		Attributes: map[string]string{"author": "ana", "license": "cc0"},
	}

	got := objgraphtest.RoundTrip(t, in, nil)
	if diff := cmp.Diff(got, in); diff != "" {
		t.Errorf("round trip mismatch (-got+want):\n%s", diff)
	}

	// Attributes are not part of older streams.
	got = objgraphtest.RoundTrip(t, in, versionOpts(1, 0, 8))
	want := *in
	want.Attributes = nil
	if diff := cmp.Diff(got, &want); diff != "" {
		t.Errorf("1.0.8 round trip mismatch (-got+want):\n%s", diff)
	}
}

func TestDepthSorted(t *testing.T) {
	leaf := &scene.Vec3Array{Values: [][3]float32{{0, 0, 1}, {0, 1, 0}}}
	root := &scene.Group{}
	root.AddChild(&scene.DepthSorted{Bin: 10, Center: [3]float64{0, 0, 1}, Child: leaf})
	root.AddChild(&scene.DepthSorted{Bin: -1, Child: leaf})
	root.AddChild(nil)

	got := objgraphtest.RoundTrip(t, root, nil)
	if diff := cmp.Diff(got, root); diff != "" {
		t.Errorf("round trip mismatch (-got+want):\n%s", diff)
	}
	a := got.Children[0].(*scene.DepthSorted)
	b := got.Children[1].(*scene.DepthSorted)
	if a.Child != b.Child {
		t.Errorf("shared leaf decoded as two objects")
	}
}

func TestRegisteredTags(t *testing.T) {
	for _, tag := range []string{
		"scene.Group",
		"scene.DepthSorted",
		"scene.ShaderStage",
		"scene.ShaderCompileSettings",
		"scene.ShaderSet",
		"scene.CustomDescriptorSetBinding",
		"scene.ViewDependentStateBinding",
		"scene.Vec3Array",
		"scene.FloatArray",
		"scene.FileReference",
	} {
		if _, ok := objgraph.Default.New(tag); !ok {
			t.Errorf("tag %q is not registered", tag)
		}
	}
}
