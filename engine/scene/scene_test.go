package scene

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/bind_group_provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubNode struct {
	name string
}

func (n *stubNode) Name() string        { return n.name }
func (n *stubNode) Visible() bool       { return true }
func (n *stubNode) PipelineKey() string { return n.name }
func (n *stubNode) MeshProvider() bind_group_provider.BindGroupProvider {
	return nil
}
func (n *stubNode) BindGroupProvider(int) bind_group_provider.BindGroupProvider {
	return nil
}

func newTestScene(options ...SceneBuilderOption) *scene {
	s := &scene{
		mu:     &sync.RWMutex{},
		name:   "test",
		logger: zap.NewNop(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func TestScene_AddKeepsOrderAndRejectsDuplicates(t *testing.T) {
	s := newTestScene()

	require.NoError(t, s.Add(&stubNode{name: "sky"}))
	require.NoError(t, s.Add(&stubNode{name: "water"}))
	require.NoError(t, s.Add(&stubNode{name: "birds"}))
	assert.Error(t, s.Add(&stubNode{name: "water"}))
	assert.Error(t, s.Add(nil))

	names := make([]string, 0, 3)
	for _, n := range s.Nodes() {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{"sky", "water", "birds"}, names)
	assert.Equal(t, 3, s.Count())
}

func TestScene_Remove(t *testing.T) {
	s := newTestScene(WithNodes(&stubNode{name: "a"}, &stubNode{name: "b"}, &stubNode{name: "a"}, nil))
	require.Equal(t, 2, s.Count())

	s.Remove("a")
	s.Remove("missing")

	require.Equal(t, 1, s.Count())
	assert.Equal(t, "b", s.Nodes()[0].Name())
}

func TestScene_SetEnvironmentRejectsNil(t *testing.T) {
	s := newTestScene()
	assert.Error(t, s.SetEnvironment(nil))
}

func TestGroupRole(t *testing.T) {
	tests := []struct {
		name  string
		names map[int]string
		want  providerRole
	}{
		{name: "camera", names: map[int]string{0: "camera"}, want: roleCamera},
		{name: "environment", names: map[int]string{0: "environment_map", 1: "environment_sampler"}, want: roleEnvironment},
		{name: "node owned", names: map[int]string{0: "water"}, want: roleNone},
		{name: "empty", names: nil, want: roleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, groupRole(tt.names))
		})
	}
}

func TestMergeVarNames(t *testing.T) {
	vertex := map[int]map[int]string{0: {0: "camera"}}
	fragment := map[int]map[int]string{1: {0: "water"}, 3: {0: "environment_map", 1: "environment_sampler"}}

	merged := mergeVarNames(vertex, fragment)

	assert.Len(t, merged, 3)
	assert.Equal(t, "camera", merged[0][0])
	assert.Equal(t, "environment_sampler", merged[3][1])
	assert.NotContains(t, merged, 2)
}

func TestWithLogger_IgnoresNil(t *testing.T) {
	s := newTestScene(WithLogger(nil))
	assert.NotNil(t, s.Logger())
}
