package scene

import (
	"github.com/cockroachdb/errors"
	"github.com/danderson/objgraph"
)

// ShaderStage is one stage of a shader program.
type ShaderStage struct {
	// Stage is the pipeline stage flag the shader runs at.
	Stage uint32
	// EntryPoint is the name of the shader's main function.
	EntryPoint string
	// Source is the shader's source code.
	Source string
	// Specialization maps specialization constant IDs to their
	// values.
	Specialization map[uint32]int32
}

func (s *ShaderStage) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(s) }
func (s *ShaderStage) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(s) }

// ShaderCompileSettings are the options a shader set's stages are
// compiled with.
type ShaderCompileSettings struct {
	VulkanVersion      uint32
	ClientInputVersion int32
	Language           int32
	DefaultVersion     int32
	Target             int32
	ForwardCompatible  bool
	GenerateDebugInfo  bool
	Optimize           bool
	Defines            []string
}

func (s *ShaderCompileSettings) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(s) }
func (s *ShaderCompileSettings) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(s) }

// AttributeBinding describes a vertex attribute a shader set accepts.
type AttributeBinding struct {
	Name     string
	Define   string
	Location uint32
	Format   uint32
	// Data is the default value of the attribute.
	Data objgraph.Object
}

// BufferBinding describes a uniform or storage buffer a shader set
// accepts.
type BufferBinding struct {
	Name            string
	Define          string
	Set             uint32
	Binding         uint32
	DescriptorType  uint32
	DescriptorCount uint32
	StageFlags      uint32
	// Data is the default contents of the buffer.
	Data objgraph.Object
}

// PushConstantRange describes a push constant block.
type PushConstantRange struct {
	Name       string
	Define     string
	StageFlags uint32
	Offset     uint32
	Size       uint32
}

// DefinesArrayState associates a set of shader defines with the
// array state that interprets vertex data compiled with them.
type DefinesArrayState struct {
	Defines    []string
	ArrayState objgraph.Object
}

// ShaderVariant is a set of stages compiled with particular settings.
type ShaderVariant struct {
	Hints  *ShaderCompileSettings
	Stages []*ShaderStage
}

// DescriptorSetBinding is a descriptor set that a shader set binds
// on behalf of its users.
type DescriptorSetBinding interface {
	objgraph.Object
	// SetIndex returns the descriptor set number.
	SetIndex() uint32
}

// ShaderSet is the description of a family of shaders, and of the
// inputs they accept.
type ShaderSet struct {
	Stages []*ShaderStage
	// DefaultShaderHints is present from format version 1.0.4.
	DefaultShaderHints            *ShaderCompileSettings
	AttributeBindings             []AttributeBinding
	BufferBindings                []BufferBinding
	PushConstantRanges            []PushConstantRange
	DefinesArrayStates            []DefinesArrayState
	OptionalDefines               []string
	DefaultGraphicsPipelineStates []objgraph.Object
	Variants                      []ShaderVariant
	// CustomDescriptorSetBindings is present from format version
	// 1.0.8. Null entries are written, but skipped when reading.
	CustomDescriptorSetBindings []DescriptorSetBinding
}

func (s *ShaderSet) MarshalGraph(e *objgraph.Encoder) error {
	if err := objgraph.WriteObjects(e, s.Stages); err != nil {
		return errors.Wrap(err, "stages")
	}
	if e.VersionAtLeast(1, 0, 4) {
		if err := e.Object(s.DefaultShaderHints); err != nil {
			return errors.Wrap(err, "default shader hints")
		}
	}
	if err := writeStructs(e, s.AttributeBindings); err != nil {
		return errors.Wrap(err, "attribute bindings")
	}
	if err := writeStructs(e, s.BufferBindings); err != nil {
		return errors.Wrap(err, "buffer bindings")
	}
	if err := writeStructs(e, s.PushConstantRanges); err != nil {
		return errors.Wrap(err, "push constant ranges")
	}
	if err := writeStructs(e, s.DefinesArrayStates); err != nil {
		return errors.Wrap(err, "defines array states")
	}
	e.Uint32(uint32(len(s.OptionalDefines)))
	e.Strings(s.OptionalDefines)
	if err := objgraph.WriteObjects(e, s.DefaultGraphicsPipelineStates); err != nil {
		return errors.Wrap(err, "default graphics pipeline states")
	}

	e.Uint32(uint32(len(s.Variants)))
	for _, v := range s.Variants {
		if err := e.Object(v.Hints); err != nil {
			return errors.Wrap(err, "variant hints")
		}
		if err := objgraph.WriteObjects(e, v.Stages); err != nil {
			return errors.Wrap(err, "variant stages")
		}
	}

	if e.VersionAtLeast(1, 0, 8) {
		if err := objgraph.WriteObjects(e, s.CustomDescriptorSetBindings); err != nil {
			return errors.Wrap(err, "custom descriptor set bindings")
		}
	}
	return nil
}

func (s *ShaderSet) UnmarshalGraph(d *objgraph.Decoder) error {
	var err error
	if s.Stages, err = objgraph.ReadObjects[*ShaderStage](d); err != nil {
		return errors.Wrap(err, "stages")
	}
	if d.VersionAtLeast(1, 0, 4) {
		if s.DefaultShaderHints, err = objgraph.ReadObject[*ShaderCompileSettings](d); err != nil {
			return errors.Wrap(err, "default shader hints")
		}
	}
	if s.AttributeBindings, err = readStructs[AttributeBinding](d); err != nil {
		return errors.Wrap(err, "attribute bindings")
	}
	if s.BufferBindings, err = readStructs[BufferBinding](d); err != nil {
		return errors.Wrap(err, "buffer bindings")
	}
	if s.PushConstantRanges, err = readStructs[PushConstantRange](d); err != nil {
		return errors.Wrap(err, "push constant ranges")
	}
	if s.DefinesArrayStates, err = readStructs[DefinesArrayState](d); err != nil {
		return errors.Wrap(err, "defines array states")
	}

	n, err := d.Uint32()
	if err != nil {
		return errors.Wrap(err, "optional defines")
	}
	s.OptionalDefines = nil
	for range n {
		def, err := d.String()
		if err != nil {
			return errors.Wrap(err, "optional defines")
		}
		s.OptionalDefines = append(s.OptionalDefines, def)
	}
	if s.DefaultGraphicsPipelineStates, err = objgraph.ReadObjects[objgraph.Object](d); err != nil {
		return errors.Wrap(err, "default graphics pipeline states")
	}

	if n, err = d.Uint32(); err != nil {
		return errors.Wrap(err, "variants")
	}
	s.Variants = nil
	for range n {
		var v ShaderVariant
		if v.Hints, err = objgraph.ReadObject[*ShaderCompileSettings](d); err != nil {
			return errors.Wrap(err, "variant hints")
		}
		if v.Stages, err = objgraph.ReadObjects[*ShaderStage](d); err != nil {
			return errors.Wrap(err, "variant stages")
		}
		s.Variants = append(s.Variants, v)
	}

	if d.VersionAtLeast(1, 0, 8) {
		bindings, err := objgraph.ReadObjects[DescriptorSetBinding](d)
		if err != nil {
			return errors.Wrap(err, "custom descriptor set bindings")
		}
		// Null bindings are dropped.
		s.CustomDescriptorSetBindings = nil
		for _, b := range bindings {
			if b != nil {
				s.CustomDescriptorSetBindings = append(s.CustomDescriptorSetBindings, b)
			}
		}
	}
	return nil
}

// writeStructs writes a count followed by the fields of each element
// of vs.
func writeStructs[T any](e *objgraph.Encoder, vs []T) error {
	e.Uint32(uint32(len(vs)))
	for i := range vs {
		if err := e.Fields(&vs[i]); err != nil {
			return err
		}
	}
	return nil
}

// readStructs reads a list written by writeStructs.
func readStructs[T any](d *objgraph.Decoder) ([]T, error) {
	n, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	var ret []T
	for range n {
		var v T
		if err := d.Fields(&v); err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}

// CustomDescriptorSetBinding is a descriptor set bound at a fixed set
// number.
type CustomDescriptorSetBinding struct {
	Set uint32
}

func (b *CustomDescriptorSetBinding) SetIndex() uint32 { return b.Set }

func (b *CustomDescriptorSetBinding) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(b) }
func (b *CustomDescriptorSetBinding) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(b) }

// ViewDependentStateBinding binds the per-view lighting and shadow
// state.
type ViewDependentStateBinding struct {
	CustomDescriptorSetBinding
}

func (b *ViewDependentStateBinding) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(b) }
func (b *ViewDependentStateBinding) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(b) }
