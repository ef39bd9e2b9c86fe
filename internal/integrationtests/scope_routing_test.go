package integrationtests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/app"
)

const nestedGenerators = `
task "default" {
  handler = "record"
  args = { label = "root.default" }
}

generator "docs" {
  task "default" {
    handler = "record"
    args = { label = "docs.default" }
  }

  generator "api" {
    task "default" {
      handler = "record"
      args = { label = "docs.api.default" }
    }

    task "render" {
      handler = "record"
      args = { label = "docs.api.render" }
    }
  }
}
`

func TestScopeRouting_NestedGenerators(t *testing.T) {
	testCases := []struct {
		name    string
		targets []string
		want    []string
	}{
		{name: "no targets", want: []string{"root.default"}},
		{name: "child default", targets: []string{"docs"}, want: []string{"docs.default"}},
		{name: "dotted path", targets: []string{"docs.api"}, want: []string{"docs.api.default"}},
		{name: "explicit task", targets: []string{"docs.api:render"}, want: []string{"docs.api.render"}},
		{name: "task list", targets: []string{"docs.api:render,default"}, want: []string{"docs.api.render", "docs.api.default"}},
		{
			name:    "several routes",
			targets: []string{"docs", "default", "docs.api:render"},
			want:    []string{"docs.default", "root.default", "docs.api.render"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			result := runIntegrationTest(t, map[string]string{"main.hcl": nestedGenerators},
				app.Config{Targets: tc.targets}, rec.module())

			require.NoError(t, result.Err)
			assert.Equal(t, tc.want, rec.Labels())
		})
	}
}

func TestScopeRouting_FilesAreMerged(t *testing.T) {
	rec := &recorder{}
	files := map[string]string{
		"main.hcl": `
task "default" {
  depends_on = ["lint-go", "lint-hcl"]
}
`,
		"lint/tasks.hcl": `
task "lint-go" { handler = "record" }
task "lint-hcl" { handler = "record" }
`,
	}
	result := runIntegrationTest(t, files, app.Config{}, rec.module())

	require.NoError(t, result.Err)
	assert.ElementsMatch(t, []string{"lint-go", "lint-hcl"}, rec.Labels())
}

func TestScopeRouting_GeneratorTaskEvents(t *testing.T) {
	rec := &recorder{}
	result := runIntegrationTest(t, map[string]string{"main.hcl": nestedGenerators},
		app.Config{Targets: []string{"docs.api:render,default"}}, rec.module())

	require.NoError(t, result.Err)
	// Task events of a nested scope bubble to the root reporter.
	assert.Equal(t, app.Summary{Finished: 2}, result.App.Summary())
	assert.Contains(t, result.LogOutput, "scope=generate.docs.api task=render status=finished")
}
