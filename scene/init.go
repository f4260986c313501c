package scene

import "github.com/danderson/objgraph"

func init() {
	objgraph.RegisterType[Group]("scene.Group")
	objgraph.RegisterType[DepthSorted]("scene.DepthSorted")

	objgraph.RegisterType[ShaderStage]("scene.ShaderStage")
	objgraph.RegisterType[ShaderCompileSettings]("scene.ShaderCompileSettings")
	objgraph.RegisterType[ShaderSet]("scene.ShaderSet")
	objgraph.RegisterType[CustomDescriptorSetBinding]("scene.CustomDescriptorSetBinding")
	objgraph.RegisterType[ViewDependentStateBinding]("scene.ViewDependentStateBinding")

	objgraph.RegisterType[Vec3Array]("scene.Vec3Array")
	objgraph.RegisterType[FloatArray]("scene.FloatArray")
	objgraph.RegisterType[FileReference]("scene.FileReference")
}
