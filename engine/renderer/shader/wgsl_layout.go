package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// typeLayout is the size and alignment of a host-shareable WGSL type.
// See https://www.w3.org/TR/WGSL/#alignment-and-size.
type typeLayout struct {
	size  uint64
	align uint64
}

func (l typeLayout) stride() uint64 {
	return roundUp(l.align, l.size)
}

// roundUp rounds v up to a multiple of align, which must be a power of two.
func roundUp(align, v uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// normalizeType removes whitespace and expands the predeclared aliases (vec3f, mat4x4f, ...) so
// every spelling of a type maps to one key.
func normalizeType(typ string) string {
	typ = strings.Join(strings.Fields(typ), "")
	if n := len(typ); n > 0 && (strings.HasPrefix(typ, "vec") || strings.HasPrefix(typ, "mat")) && !strings.Contains(typ, "<") {
		switch typ[n-1] {
		case 'f':
			return typ[:n-1] + "<f32>"
		case 'i':
			return typ[:n-1] + "<i32>"
		case 'u':
			return typ[:n-1] + "<u32>"
		case 'h':
			return typ[:n-1] + "<f16>"
		}
	}
	return typ
}

// vectorShape splits a scalar or vecN<T> into its component count and scalar type.
func vectorShape(typ string) (int, string) {
	switch typ {
	case "f32", "i32", "u32", "bool":
		return 1, typ
	}
	if len(typ) > 6 && strings.HasPrefix(typ, "vec") && typ[4] == '<' && strings.HasSuffix(typ, ">") {
		n := int(typ[3] - '0')
		if n >= 2 && n <= 4 {
			return n, typ[5 : len(typ)-1]
		}
	}
	return 0, ""
}

var vertexFormats = map[string][4]wgpu.VertexFormat{
	"f32": {wgpu.VertexFormatFloat32, wgpu.VertexFormatFloat32x2, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x4},
	"i32": {wgpu.VertexFormatSint32, wgpu.VertexFormatSint32x2, wgpu.VertexFormatSint32x3, wgpu.VertexFormatSint32x4},
	"u32": {wgpu.VertexFormatUint32, wgpu.VertexFormatUint32x2, wgpu.VertexFormatUint32x3, wgpu.VertexFormatUint32x4},
}

// vertexFormat maps a 32-bit scalar or vector type onto its vertex attribute format and byte size.
func vertexFormat(typ string) (wgpu.VertexFormat, uint64, bool) {
	n, scalar := vectorShape(typ)
	formats, ok := vertexFormats[scalar]
	if !ok || n == 0 {
		return 0, 0, false
	}
	return formats[n-1], uint64(4 * n), true
}

// resolveLayout computes the layout of scalars, vectors, f32 matrices, atomics, arrays and the
// structs in known. A runtime-sized array resolves to a single element, its minimum binding size.
func resolveLayout(typ string, known map[string]typeLayout) (typeLayout, bool) {
	if l, ok := known[typ]; ok {
		return l, true
	}

	if n, scalar := vectorShape(typ); n > 0 {
		if scalar == "f16" {
			return typeLayout{}, false
		}
		align := uint64(4)
		switch n {
		case 2:
			align = 8
		case 3, 4:
			align = 16
		}
		return typeLayout{size: uint64(4 * n), align: align}, true
	}

	switch typ {
	case "atomic<u32>", "atomic<i32>":
		return typeLayout{size: 4, align: 4}, true
	}

	// matCxR<f32> is C columns of vecR<f32>
	if len(typ) == 11 && strings.HasPrefix(typ, "mat") && typ[4] == 'x' && strings.HasSuffix(typ, "<f32>") {
		cols, rows := int(typ[3]-'0'), int(typ[5]-'0')
		if cols < 2 || cols > 4 || rows < 2 || rows > 4 {
			return typeLayout{}, false
		}
		column, _ := resolveLayout("vec"+strconv.Itoa(rows)+"<f32>", nil)
		return typeLayout{size: uint64(cols) * column.stride(), align: column.align}, true
	}

	if inner, ok := strings.CutPrefix(typ, "array<"); ok && strings.HasSuffix(inner, ">") {
		parts := splitTopLevel(inner[:len(inner)-1], ',')
		elem, ok := resolveLayout(parts[0], known)
		if !ok {
			return typeLayout{}, false
		}
		count := uint64(1)
		if len(parts) == 2 {
			c, err := strconv.ParseUint(parts[1], 10, 64)
			if err != nil {
				return typeLayout{}, false
			}
			count = c
		}
		return typeLayout{size: count * elem.stride(), align: elem.align}, true
	}

	return typeLayout{}, false
}

// structLayouts resolves every struct whose members resolve, repeating until structs that embed
// other structs settle.
func structLayouts(structs []wgslStruct) map[string]typeLayout {
	known := make(map[string]typeLayout, len(structs))
	pending := append([]wgslStruct(nil), structs...)

	for len(pending) > 0 {
		var unresolved []wgslStruct
		for _, s := range pending {
			if l, ok := structLayout(s, known); ok {
				known[s.name] = l
			} else {
				unresolved = append(unresolved, s)
			}
		}
		if len(unresolved) == len(pending) {
			break
		}
		pending = unresolved
	}
	return known
}

func structLayout(s wgslStruct, known map[string]typeLayout) (typeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for _, m := range s.members {
		if m.builtin {
			continue
		}
		l, ok := resolveLayout(m.typ, known)
		if !ok {
			return typeLayout{}, false
		}
		offset = roundUp(l.align, offset) + l.size
		align = max(align, l.align)
	}
	return typeLayout{size: roundUp(align, offset), align: align}, true
}
