package main

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/blang/semver/v4"
	"github.com/cockroachdb/errors"
	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/mds/heapq"
	"github.com/creachadair/mds/value"
	"github.com/danderson/objgraph"
	"github.com/danderson/objgraph/fragments"
	"github.com/danderson/objgraph/scene"
	"github.com/kr/pretty"
	"go.uber.org/zap"
)

var globalArgs struct {
	Debug        bool `flag:"debug,Log every object read or written"`
	ConvertFloat bool `flag:"convert-long-doubles,Convert foreign extended-precision floats instead of failing"`
}

func main() {
	root := &command.C{
		Name:     "objgraph",
		Usage:    "command args...",
		SetFlags: command.Flags(flax.MustBind, &globalArgs),
		Commands: []*command.C{
			{
				Name:  "header",
				Usage: "header file",
				Help:  "Print the byte order and format version of a stream.",
				Run:   command.Adapt(runHeader),
			},
			{
				Name:  "dump",
				Usage: "dump file",
				Help: `Decode a stream and print every top-level object.

Objects referenced more than once are printed at each reference.`,
				Run: command.Adapt(runDump),
			},
			{
				Name:     "stats",
				Usage:    "stats file",
				Help:     "Count the objects of each type in a stream.",
				SetFlags: command.Flags(flax.MustBind, &statsArgs),
				Run:      command.Adapt(runStats),
			},
			{
				Name:  "types",
				Usage: "types",
				Help:  "List the registered type tags.",
				Run:   command.Adapt(runTypes),
			},
			{
				Name:     "demo",
				Usage:    "demo out",
				Help:     "Write a small example scene graph to a file.",
				SetFlags: command.Flags(flax.MustBind, &demoArgs),
				Run:      command.Adapt(runDemo),
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}

	env := root.NewEnv(nil)
	command.RunOrFail(env, os.Args[1:])
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !globalArgs.Debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

func readOptions() (*objgraph.Options, error) {
	log, err := newLogger()
	if err != nil {
		return nil, errors.Wrap(err, "creating logger")
	}
	ret := &objgraph.Options{
		Logger: log,
	}
	if globalArgs.ConvertFloat {
		ret.LongDoubles = fragments.ConvertLongDouble
	}
	return ret, nil
}

func runHeader(env *command.Env, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := printHeader(os.Stdout, f); err != nil {
		return errors.Wrapf(err, "reading header of %s", path)
	}
	return nil
}

// anyVersion accepts every version a stream header can record.
var anyVersion = objgraph.Version(math.MaxUint32, math.MaxUint32, math.MaxUint32)

// printHeader describes the header of the stream in r. Streams newer
// than this program can read are described too.
func printHeader(w io.Writer, r io.Reader) error {
	d, err := objgraph.NewDecoder(r, &objgraph.Options{MaxVersion: value.Just(anyVersion)})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Byte order:", orderName(d.Order))
	fmt.Fprintln(w, "Version:", d.Version())
	if d.Version().GT(objgraph.CurrentVersion) {
		fmt.Fprintf(w, "Newer than supported version %s, contents cannot be read\n", objgraph.CurrentVersion)
	}
	return nil
}

func runDump(env *command.Env, path string) error {
	opts, err := readOptions()
	if err != nil {
		return err
	}
	defer opts.Logger.Sync()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var out indenter
	i := 0
	for obj, err := range readAll(f, opts) {
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}
		out.indent(0)
		out.f("object %d: %T", i, obj)
		out.indent(1)
		out.f("%# v", pretty.Formatter(obj))
		i++
	}
	return nil
}

var statsArgs struct {
	Top int `flag:"top,default=10,Number of types to print"`
}

type tagCount struct {
	Tag   string
	Count int
}

func runStats(env *command.Env, path string) error {
	opts, err := readOptions()
	if err != nil {
		return err
	}
	defer opts.Logger.Sync()
	types := objgraph.NewCountingRegistry(objgraph.Default)
	opts.Types = types.Registry

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	roots := 0
	for _, err := range readAll(f, opts) {
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}
		roots++
	}

	byCount := heapq.New(func(a, b tagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
	total := 0
	for tag, n := range types.Counts() {
		byCount.Add(tagCount{tag, n})
		total += n
	}

	fmt.Printf("%d top-level objects, %d distinct objects, %d types\n", roots, total, byCount.Len())
	var out indenter
	out.indent(1)
	for range statsArgs.Top {
		tc, ok := byCount.Pop()
		if !ok {
			break
		}
		out.f("%8d %s", tc.Count, tc.Tag)
	}
	if rest := byCount.Len(); rest > 0 {
		out.f("... and %d more types", rest)
	}
	return nil
}

func runTypes(env *command.Env) error {
	for _, tag := range objgraph.Default.Tags() {
		obj, _ := objgraph.Default.New(tag)
		fmt.Printf("%s\t%T\n", tag, obj)
	}
	return nil
}

var demoArgs struct {
	Version   string `flag:"version,Format version to write (default current)"`
	BigEndian bool   `flag:"big-endian,Write big endian values instead of the native order"`
}

func runDemo(env *command.Env, path string) error {
	log, err := newLogger()
	if err != nil {
		return errors.Wrap(err, "creating logger")
	}
	defer log.Sync()

	opts := &objgraph.Options{
		Logger: log,
	}
	if demoArgs.Version != "" {
		v, err := semver.ParseTolerant(demoArgs.Version)
		if err != nil {
			return env.Usagef("invalid --version: %v", err)
		}
		opts.Version = value.Just(v)
	}
	if demoArgs.BigEndian {
		opts.Order = fragments.BigEndian
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := objgraph.NewWriter(f, opts)
	if err != nil {
		return err
	}
	for _, obj := range demoScene() {
		if err := w.Write(obj); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}
	fmt.Printf("Wrote example scene to %s\n", path)
	return nil
}

// demoScene returns two top-level objects that share part of their
// graph.
func demoScene() []objgraph.Object {
	vertices := &scene.Vec3Array{Values: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}
	vert := &scene.ShaderStage{
		Stage:      1,
		EntryPoint: "main",
		Source:     "#version 450\nvoid main() {}\n",
	}
	frag := &scene.ShaderStage{
		Stage:          0x10,
		EntryPoint:     "main",
		Source:         "#version 450\nvoid main() {}\n",
		Specialization: map[uint32]int32{0: 1},
	}
	hints := &scene.ShaderCompileSettings{VulkanVersion: 1<<22 | 2<<12, Optimize: true}
	shaders := &scene.ShaderSet{
		Stages:             []*scene.ShaderStage{vert, frag},
		DefaultShaderHints: hints,
		AttributeBindings: []scene.AttributeBinding{
			{Name: "vsg_Vertex", Location: 0, Format: 106, Data: vertices},
		},
		OptionalDefines: []string{"VSG_TWO_SIDED_LIGHTING"},
		Variants: []scene.ShaderVariant{
			{Hints: hints, Stages: []*scene.ShaderStage{vert, frag}},
		},
		CustomDescriptorSetBindings: []scene.DescriptorSetBinding{
			&scene.ViewDependentStateBinding{CustomDescriptorSetBinding: scene.CustomDescriptorSetBinding{Set: 1}},
		},
	}

	world := &scene.Group{}
	world.AddChild(shaders)
	world.AddChild(&scene.DepthSorted{Bin: 10, Center: [3]float64{0.5, 0.5, 0}, Child: vertices})
	world.AddChild(&scene.FileReference{
		Path:       "models/teapot.vsgb",
		Label:      []rune("teapot"),
		Scale:      [4]float64{1, 1, 1, 1},
		Attributes: map[string]string{"source": "demo"},
	})
	// The overlay shares the world's vertices.
	overlay := &scene.Group{Children: []objgraph.Object{vertices, nil}}
	return []objgraph.Object{world, overlay}
}

func orderName(o fragments.ByteOrder) string {
	switch o {
	case fragments.BigEndian:
		return "big endian"
	case fragments.LittleEndian:
		return "little endian"
	default:
		return fmt.Sprint(o)
	}
}
