package valuesource_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/261019-go-pkg-interp/pkg/interp"
	"github.com/lwmacct/261019-go-pkg-interp/pkg/valuesource"
)

type project struct {
	Name    string   `json:"name"`
	Build   build    `json:"build"`
	Modules []module `json:"modules"`
}

type build struct {
	Directory string `json:"directory"`
}

type module struct {
	ID string `json:"id"`
}

func TestObject(t *testing.T) {
	src := valuesource.NewObject(&project{
		Name:    "interp",
		Build:   build{Directory: "${name}/target"},
		Modules: []module{{ID: "core"}, {ID: "cli"}},
	})

	tests := []struct {
		expression string
		want       any
	}{
		{expression: "name", want: "interp"},
		{expression: "build.directory", want: "${name}/target"},
		{expression: "modules[1].id", want: "cli"},
		{expression: "modules[5].id", want: nil},
		{expression: "missing", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			v, err := src.Value(tt.expression, interp.DefaultDelimiter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	got, err := interp.New(interp.WithValueSources(src)).Interpolate("out=${build.directory}")
	require.NoError(t, err)
	assert.Equal(t, "out=interp/target", got)

	assert.Equal(t, []string{"build.directory", "modules", "name"}, src.Keys())
}

func TestObject_PrefixedLikeProjectModel(t *testing.T) {
	src := valuesource.NewPrefixed(
		valuesource.NewObject(map[string]any{"version": "1.0"}),
		[]string{"project.", "pom."},
		true,
	)

	got, err := interp.New(interp.WithValueSources(src)).Interpolate("${project.version} ${pom.version} ${version}")
	require.NoError(t, err)
	assert.Equal(t, "1.0 1.0 1.0", got)
}

func TestObject_BadPathIsFeedback(t *testing.T) {
	src := valuesource.NewObject(map[string]any{"a": 1})

	v, err := src.Value("a[", interp.DefaultDelimiter)
	require.NoError(t, err)
	assert.Nil(t, v)
	require.Len(t, src.Feedback(), 1)
	assert.Contains(t, src.Feedback()[0].Message, "a[")
}

func TestParseJSON(t *testing.T) {
	src, err := valuesource.ParseJSON([]byte(`{"db":{"hosts":["a","b"],"port":5432}}`))
	require.NoError(t, err)

	got, err := interp.New(interp.WithValueSources(src)).Interpolate("${db.hosts[0]}:${db.port}")
	require.NoError(t, err)
	assert.Equal(t, "a:5432", got)

	_, err = valuesource.ParseJSON([]byte("{"))
	require.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	override := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(base, []byte("app:\n  name: demo\n  port: 80\n"), 0o644))
	require.NoError(t, os.WriteFile(override, []byte("app:\n  port: 8080\n"), 0o644))

	src, err := valuesource.LoadYAML(base, override)
	require.NoError(t, err)

	got, err := interp.New(interp.WithValueSources(src)).Interpolate("${app.name}:${app.port}")
	require.NoError(t, err)
	assert.Equal(t, "demo:8080", got)
	assert.Equal(t, []string{"app.name", "app.port"}, src.Keys())

	_, err = valuesource.LoadYAML(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
