package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	structRegex      = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex    = regexp.MustCompile(`@location\((\d+)\)`)
	attributeRegex   = regexp.MustCompile(`@\w+(?:\([^)]*\))?`)
	entryPointRegex  = regexp.MustCompile(`@(vertex|fragment|compute)\b[^{]*?\bfn\s+(\w+)`)
	workgroupRegex   = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?(?:,\s*(\d+)\s*)?\)`)
	bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// wgslStruct is a struct declaration found in shader source.
type wgslStruct struct {
	name    string
	members []wgslMember
}

// wgslMember is one struct member. location is -1 without an @location attribute.
type wgslMember struct {
	name     string
	typ      string
	location int
	builtin  bool
}

// reflection holds what the renderer needs to know about a pre-processed WGSL module: its entry
// points, vertex inputs, workgroup size and resource bindings.
type reflection struct {
	source  string // comments removed
	structs []wgslStruct
	layouts map[string]typeLayout
}

func reflectSource(source string) *reflection {
	r := &reflection{source: stripComments(source)}
	for _, m := range structRegex.FindAllStringSubmatch(r.source, -1) {
		r.structs = append(r.structs, wgslStruct{name: m[1], members: parseMembers(m[2])})
	}
	r.layouts = structLayouts(r.structs)
	return r
}

func parseMembers(body string) []wgslMember {
	var members []wgslMember
	for _, part := range splitTopLevel(body, ',') {
		m := wgslMember{location: -1}
		if loc := locationRegex.FindStringSubmatch(part); loc != nil {
			m.location, _ = strconv.Atoi(loc[1])
		}
		m.builtin = strings.Contains(part, "@builtin(")

		name, typ, ok := strings.Cut(attributeRegex.ReplaceAllString(part, ""), ":")
		if !ok {
			continue
		}
		m.name = strings.TrimSpace(name)
		m.typ = normalizeType(typ)
		if m.name == "" || m.typ == "" {
			continue
		}
		members = append(members, m)
	}
	return members
}

// entryPoint returns the name of the first function marked with the stage attribute of t.
func (r *reflection) entryPoint(t ShaderType) string {
	stage := map[ShaderType]string{
		ShaderTypeVertex:   "vertex",
		ShaderTypeFragment: "fragment",
		ShaderTypeCompute:  "compute",
	}[t]
	for _, m := range entryPointRegex.FindAllStringSubmatch(r.source, -1) {
		if m[1] == stage {
			return m[2]
		}
	}
	return ""
}

// workgroupSize returns the @workgroup_size dimensions, missing dimensions are 1.
func (r *reflection) workgroupSize() [3]uint32 {
	size := [3]uint32{1, 1, 1}
	m := workgroupRegex.FindStringSubmatch(r.source)
	if m == nil {
		return size
	}
	for i, dim := range m[1:] {
		if v, err := strconv.ParseUint(dim, 10, 32); err == nil {
			size[i] = uint32(v)
		}
	}
	return size
}

// vertexLayouts builds one buffer layout per vertex input struct, in declaration order. A vertex
// input struct has at least one @location member and no @builtin member. Structs with a member
// that is not a valid vertex attribute type are skipped.
func (r *reflection) vertexLayouts() map[int][]wgpu.VertexBufferLayout {
	layouts := make(map[int][]wgpu.VertexBufferLayout)
	for _, s := range r.structs {
		if !isVertexInput(s) {
			continue
		}
		var stride uint64
		attrs := make([]wgpu.VertexAttribute, 0, len(s.members))
		valid := true
		for _, m := range s.members {
			format, size, ok := vertexFormat(m.typ)
			if !ok {
				valid = false
				break
			}
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         format,
				Offset:         stride,
				ShaderLocation: uint32(m.location),
			})
			stride += size
		}
		if !valid {
			continue
		}
		layouts[len(layouts)] = []wgpu.VertexBufferLayout{{
			ArrayStride: stride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		}}
	}
	return layouts
}

func isVertexInput(s wgslStruct) bool {
	located := false
	for _, m := range s.members {
		if m.builtin {
			return false
		}
		located = located || m.location >= 0
	}
	return located
}

// bindGroups collects every @group/@binding declaration into layout descriptors keyed by group,
// entries sorted by binding. Buffer entries get a MinBindingSize when the bound type resolves.
// The second result holds the declared variable names by group and binding.
func (r *reflection) bindGroups(visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)

	for _, m := range bindingDeclRegex.FindAllStringSubmatch(r.source, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		typ := normalizeType(m[5])

		entry := bindingEntry(uint32(binding), visibility, strings.TrimSpace(m[3]), typ)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := resolveLayout(typ, r.layouts); ok {
				entry.Buffer.MinBindingSize = l.size
			}
		}
		entries[group] = append(entries[group], entry)

		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = m[4]
	}

	descriptors := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for g, es := range entries {
		sort.Slice(es, func(i, j int) bool { return es[i].Binding < es[j].Binding })
		descriptors[g] = wgpu.BindGroupLayoutDescriptor{Entries: es}
	}
	return descriptors, names
}

var textureDimensions = map[string]wgpu.TextureViewDimension{
	"texture_1d":              wgpu.TextureViewDimension1D,
	"texture_2d":              wgpu.TextureViewDimension2D,
	"texture_2d_array":        wgpu.TextureViewDimension2DArray,
	"texture_3d":              wgpu.TextureViewDimension3D,
	"texture_cube":            wgpu.TextureViewDimensionCube,
	"texture_cube_array":      wgpu.TextureViewDimensionCubeArray,
	"texture_multisampled_2d": wgpu.TextureViewDimension2D,
	"texture_depth_2d":        wgpu.TextureViewDimension2D,
	"texture_depth_cube":      wgpu.TextureViewDimensionCube,
}

var textureSampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

// bindingEntry classifies one declaration. A non-empty address space makes it a buffer, otherwise
// the type decides between sampler and sampled texture.
func bindingEntry(binding uint32, visibility wgpu.ShaderStage, addressSpace, typ string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}

	switch {
	case addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(addressSpace, "storage") && strings.Contains(addressSpace, "read_write"):
		entry.Buffer.Type = wgpu.BufferBindingTypeStorage
	case strings.HasPrefix(addressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	case typ == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typ == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(typ, "texture_"):
		base, param := splitTypeParams(typ)
		entry.Texture.ViewDimension = textureDimensions[base]
		entry.Texture.Multisampled = strings.Contains(base, "multisampled")
		if strings.HasPrefix(base, "texture_depth") {
			entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		} else {
			entry.Texture.SampleType = textureSampleTypes[param]
		}
	}
	return entry
}

// stripComments removes line comments and nested block comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch source[i : i+2] {
			case "/*":
				depth++
				i++
				continue
			case "*/":
				depth = max(depth-1, 0)
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}

	var out strings.Builder
	out.Grow(sb.Len())
	for line := range strings.SplitSeq(sb.String(), "\n") {
		if before, _, ok := strings.Cut(line, "//"); ok {
			line = before
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.String()
}

// splitTopLevel splits s at sep, ignoring separators inside angle brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth = max(depth-1, 0)
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// splitTypeParams splits "texture_2d<f32>" into "texture_2d" and "f32".
func splitTypeParams(typ string) (string, string) {
	base, params, ok := strings.Cut(typ, "<")
	if !ok {
		return typ, ""
	}
	return base, strings.TrimSpace(strings.TrimSuffix(params, ">"))
}
