package shader

// ShaderBuilderOption configures a shader before its source is pre-processed.
type ShaderBuilderOption func(*shader)

// WithInclude registers a WGSL snippet for @oxy:include and, when typeName is not empty,
// for use as an @oxy:group binding type.
//
// Parameters:
//   - key: the include argument used in the shader source
//   - source: the WGSL text to inject
//   - typeName: the WGSL struct name declared by source, or "" for declaration-only snippets
//
// Returns:
//   - ShaderBuilderOption: a function that registers the include
func WithInclude(key AnnotationArg, source, typeName string) ShaderBuilderOption {
	return func(s *shader) {
		s.includes[key] = StructSource{Source: source, Type: typeName}
	}
}

// WithDefine sets the value substituted for //@oxy:define name.
// The value is emitted verbatim as an f32 literal.
//
// Parameters:
//   - name: the constant name
//   - value: the WGSL literal, e.g. "800.00"
//
// Returns:
//   - ShaderBuilderOption: a function that sets the define
func WithDefine(name, value string) ShaderBuilderOption {
	return func(s *shader) {
		s.defines[name] = value
	}
}
