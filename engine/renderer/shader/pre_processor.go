// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader source for
// @oxy: annotations, replaces them with injected struct source, generated bind group
// declarations or f32 constants, and collects the group declarations in source order.
//
// The struct registry starts with the engine's built-in camera uniform. Packages that own
// their own GPU structs add them per shader through WithInclude, so the shader package never
// imports the packages that consume it.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-flock/engine/camera"
)

// StructSource pairs a WGSL source snippet with the type name emitted in @oxy:group
// declarations. An empty Type marks a declaration-only snippet that can be included but
// not used as a binding type.
type StructSource struct {
	// Source is the raw WGSL text injected by @oxy:include.
	Source string

	// Type is the WGSL type name emitted in @oxy:group declarations (e.g. "CameraUniform").
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]StructSource
	addressSpaceRegistry map[AnnotationArg]string
	defines              map[string]string

	// declarations is reset at the start of each Process call.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations.
type PreProcessor interface {
	// Process replaces every @oxy: annotation in source with its WGSL output.
	// @oxy:include lines become the registered source, @oxy:group lines become
	// @group/@binding declarations and @oxy:define lines become f32 constants.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error if any annotation is malformed, unknown or has no define value
	Process(source string) (string, error)

	// Declarations returns the group annotations collected during the most recent Process call.
	//
	// Returns:
	//   - []Annotation: the declarations in source order
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the built-in camera struct plus the given extra
// structs and define values.
//
// Parameters:
//   - structs: additional include sources keyed by annotation argument, may be nil
//   - defines: define values keyed by constant name, may be nil
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(structs map[AnnotationArg]StructSource, defines map[string]string) PreProcessor {
	registry := map[AnnotationArg]StructSource{
		AnnotationArgCamera: {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
	}
	for k, v := range structs {
		registry[k] = v
	}
	d := make(map[string]string, len(defines))
	for k, v := range defines {
		d[k] = v
	}
	return &preProcessor{
		structRegistry: registry,
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
		defines: d,
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", a.Line, a.Args[0])
			}
			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup:
			wgslType, err := p.resolveType(string(a.Args[2]))
			if err != nil {
				return "", fmt.Errorf("line %d: %w", a.Line, err)
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
				*a.Group, *a.Binding, p.addressSpaceRegistry[a.Args[0]], a.Args[1], wgslType))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeDefine:
			value, ok := p.defines[string(a.Args[0])]
			if !ok {
				return "", fmt.Errorf("line %d: no value for @oxy:define %q", a.Line, a.Args[0])
			}
			out = append(out, fmt.Sprintf("const %s: f32 = %s;", a.Args[0], value))
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", a.Line, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

// resolveType maps a group annotation type argument onto a WGSL type. Registered struct keys
// resolve to their type name, optionally wrapped in array<>. Anything else must be a raw
// host-shareable WGSL type with a known layout and is emitted verbatim.
func (p *preProcessor) resolveType(arg string) (string, error) {
	if entry, ok := p.structRegistry[AnnotationArg(arg)]; ok {
		if entry.Type == "" {
			return "", fmt.Errorf("include %q has no type and cannot be bound", arg)
		}
		return entry.Type, nil
	}
	if inner, ok := strings.CutPrefix(arg, "array<"); ok {
		inner = strings.TrimSuffix(inner, ">")
		if entry, ok := p.structRegistry[AnnotationArg(inner)]; ok && entry.Type != "" {
			return fmt.Sprintf("array<%s>", entry.Type), nil
		}
	}
	if _, ok := resolveLayout(normalizeType(arg), nil); ok {
		return arg, nil
	}
	return "", fmt.Errorf("unknown type %q in @oxy group annotation", arg)
}
