package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testParamsSource = `struct Params {
    scale: f32,
    count: u32,
    offset: vec3<f32>,
}`

const testComputeSource = `//@oxy:include params
//@oxy:define LIMIT

//@oxy:group 0 0 storage_uniform params params
//@oxy:group 0 1 storage_read input array<vec4<f32>>
//@oxy:group 0 2 storage_read_write output array<vec4<f32>>

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x;
    if (i >= params.count) {
        return;
    }
    output[i] = min(input[i] * params.scale, vec4<f32>(LIMIT));
}
`

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *Annotation
		wantErr bool
	}{
		{name: "plain line", line: "let x = 1.0;"},
		{name: "ordinary comment", line: "// just a comment"},
		{name: "prefix outside comment", line: `let s = "@oxy:include camera";`},
		{
			name: "include",
			line: "//@oxy:include camera",
			want: &Annotation{Type: annotationTypeInclude, Args: []AnnotationArg{"camera"}, Line: 1},
		},
		{
			name: "define",
			line: "  //@oxy:define BOUNDS",
			want: &Annotation{Type: AnnotationTypeDefine, Args: []AnnotationArg{"BOUNDS"}, Line: 1},
		},
		{name: "define bad name", line: "//@oxy:define 9LIVES", wantErr: true},
		{name: "include missing arg", line: "//@oxy:include", wantErr: true},
		{name: "group wrong arity", line: "//@oxy:group 0 0 storage_uniform camera", wantErr: true},
		{name: "group bad index", line: "//@oxy:group a 0 storage_uniform camera camera", wantErr: true},
		{name: "group bad address space", line: "//@oxy:group 0 0 private camera camera", wantErr: true},
		{name: "unknown type", line: "//@oxy:provider 0 0 camera", wantErr: true},
		{name: "empty", line: "//@oxy:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnnotation(tt.line, 1)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAnnotation_Group(t *testing.T) {
	got, err := parseAnnotation("//@oxy:group 1 2 storage_read positions array<vec4<f32>>", 7)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, AnnotationTypeBindingGroup, got.Type)
	assert.Equal(t, 1, *got.Group)
	assert.Equal(t, 2, *got.Binding)
	assert.Equal(t, 7, got.Line)
	assert.Equal(t, []AnnotationArg{"storage_read", "positions", "array<vec4<f32>>"}, got.Args)
}

func TestPreProcessor_Process(t *testing.T) {
	pp := NewPreProcessor(
		map[AnnotationArg]StructSource{"params": {Source: testParamsSource, Type: "Params"}},
		map[string]string{"LIMIT": "800.00"},
	)

	out, err := pp.Process(testComputeSource)
	require.NoError(t, err)

	assert.Contains(t, out, "struct Params {")
	assert.Contains(t, out, "const LIMIT: f32 = 800.00;")
	assert.Contains(t, out, "@group(0) @binding(0) var<uniform> params: Params;")
	assert.Contains(t, out, "@group(0) @binding(1) var<storage, read> input: array<vec4<f32>>;")
	assert.Contains(t, out, "@group(0) @binding(2) var<storage, read_write> output: array<vec4<f32>>;")
	assert.NotContains(t, out, annotationPrefix)

	decls := pp.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, AnnotationArg("output"), decls[2].Args[1])
}

func TestPreProcessor_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		errMsg string
	}{
		{name: "missing define", source: "//@oxy:define BOUNDS", errMsg: `no value for @oxy:define "BOUNDS"`},
		{name: "unknown include", source: "//@oxy:include birds", errMsg: "unknown @oxy:include argument"},
		{name: "unknown group type", source: "//@oxy:group 0 0 storage_uniform u Missing", errMsg: "unknown type"},
		{name: "declaration-only include as type", source: "//@oxy:group 0 0 storage_uniform u decls", errMsg: "cannot be bound"},
	}

	pp := NewPreProcessor(map[AnnotationArg]StructSource{"decls": {Source: "const A: f32 = 1.0;"}}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pp.Process(tt.source)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPreProcessor_BuiltinCamera(t *testing.T) {
	pp := NewPreProcessor(nil, nil)
	out, err := pp.Process("//@oxy:include camera\n//@oxy:group 0 0 storage_uniform camera camera")
	require.NoError(t, err)

	assert.Contains(t, out, "struct CameraUniform")
	assert.Contains(t, out, "var<uniform> camera: CameraUniform;")
}

func TestNewShaderFromSource_Compute(t *testing.T) {
	s := NewShaderFromSource("test_compute", ShaderTypeCompute, testComputeSource,
		WithInclude("params", testParamsSource, "Params"),
		WithDefine("LIMIT", "1.5"),
	)

	assert.Equal(t, "main", s.EntryPoint())
	assert.Equal(t, [3]uint32{64, 1, 1}, s.WorkgroupSize())
	assert.Contains(t, s.Source(), "const LIMIT: f32 = 1.5;")
	assert.Equal(t, "input", s.BindGroupVarName(0, 1))
	assert.Empty(t, s.BindGroupVarName(3, 0))
	assert.Empty(t, s.VertexLayouts())

	desc := s.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 3)

	assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[0].Buffer.Type)
	// f32 + u32 + pad to 16, vec3 at 16, struct rounded to 32
	assert.Equal(t, uint64(32), desc.Entries[0].Buffer.MinBindingSize)

	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, desc.Entries[1].Buffer.Type)
	assert.Equal(t, uint64(16), desc.Entries[1].Buffer.MinBindingSize)

	assert.Equal(t, wgpu.BufferBindingTypeStorage, desc.Entries[2].Buffer.Type)
	for _, e := range desc.Entries {
		assert.Equal(t, wgpu.ShaderStageCompute, e.Visibility)
	}
}

func TestNewShaderFromSource_MissingDefinePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewShaderFromSource("test_compute", ShaderTypeCompute, testComputeSource,
			WithInclude("params", testParamsSource, "Params"),
		)
	})
}

func TestNewShaderFromSource_VertexLayout(t *testing.T) {
	src := `struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) color: vec3<f32>,
    @location(2) reference: vec2<f32>,
    @location(3) bird_vertex: f32,
}

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec3<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = vec4<f32>(in.position, 1.0);
    out.color = in.color;
    return out;
}
`
	s := NewShaderFromSource("test_vertex", ShaderTypeVertex, src)

	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Equal(t, [3]uint32{0, 0, 0}, s.WorkgroupSize())
	require.Len(t, s.VertexLayouts(), 1)

	layout := s.VertexLayout(0)
	require.Len(t, layout, 1)
	assert.Equal(t, uint64(36), layout[0].ArrayStride)
	require.Len(t, layout[0].Attributes, 4)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout[0].Attributes[2].Format)
	assert.Equal(t, uint64(24), layout[0].Attributes[2].Offset)
	assert.Equal(t, uint32(3), layout[0].Attributes[3].ShaderLocation)
}

func TestNewShaderFromSource_NoEntryPointPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewShaderFromSource("broken", ShaderTypeFragment, "fn helper() -> f32 { return 1.0; }")
	})
}

func TestBindGroupLayoutsFromSource_TextureAndSampler(t *testing.T) {
	src := strings.Join([]string{
		"@group(3) @binding(0) var environment_map: texture_2d<f32>;",
		"@group(3) @binding(1) var environment_sampler: sampler;",
	}, "\n")

	layouts := BindGroupLayoutsFromSource(src, ShaderTypeFragment)
	require.Contains(t, layouts, 3)

	entries := layouts[3].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, entries[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, entries[1].Sampler.Type)
	assert.Equal(t, wgpu.ShaderStageFragment, entries[1].Visibility)
}

func TestStripComments(t *testing.T) {
	src := "a /* b /* nested */ c */ d // tail\ne"
	assert.Equal(t, "a  d \ne\n", stripComments(src))
}

func TestResolveLayout(t *testing.T) {
	known := structLayouts(reflectSource(`struct Plane { normal: vec3f, d: f32, }
struct Frustum { planes: array<Plane, 6>, }`).structs)

	tests := []struct {
		typ   string
		size  uint64
		align uint64
	}{
		{typ: "vec3f", size: 12, align: 16},
		{typ: "vec2<u32>", size: 8, align: 8},
		{typ: "mat4x4f", size: 64, align: 16},
		{typ: "mat3x3<f32>", size: 48, align: 16},
		{typ: "array<vec3<f32>, 4>", size: 64, align: 16},
		{typ: "array<f32>", size: 4, align: 4},
		{typ: "Plane", size: 16, align: 16},
		{typ: "Frustum", size: 96, align: 16},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			l, ok := resolveLayout(normalizeType(tt.typ), known)
			require.True(t, ok)
			assert.Equal(t, tt.size, l.size)
			assert.Equal(t, tt.align, l.align)
		})
	}

	_, ok := resolveLayout("Unknown", known)
	assert.False(t, ok)
}

func TestReflection_DepthTextureAndComparisonSampler(t *testing.T) {
	ref := reflectSource(`@group(2) @binding(0) var shadow_map: texture_depth_2d;
@group(2) @binding(1) var shadow_sampler: sampler_comparison;
@group(2) @binding(2) var<storage, read_write> counts: array<atomic<u32>>;`)

	layouts, names := ref.bindGroups(wgpu.ShaderStageFragment)
	entries := layouts[2].Entries
	require.Len(t, entries, 3)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, entries[1].Sampler.Type)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, entries[2].Buffer.Type)
	assert.Equal(t, uint64(4), entries[2].Buffer.MinBindingSize)
	assert.Equal(t, "counts", names[2][2])
}
