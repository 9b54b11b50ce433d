package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertGroup struct {
	Name  string      `yaml:"name"`
	Rules []alertRule `yaml:"rules"`
}

type alertSpec struct {
	Groups []alertGroup `yaml:"groups"`
}

func TestPortalAlertRules(t *testing.T) {
	path := filepath.Join("..", "..", "deploy", "prometheus", "alerts", "portal.yml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var spec alertSpec
	require.NoError(t, yaml.Unmarshal(data, &spec))
	require.NotEmpty(t, spec.Groups)

	var portal *alertGroup
	for i := range spec.Groups {
		if spec.Groups[i].Name == "portal" {
			portal = &spec.Groups[i]
			break
		}
	}
	require.NotNil(t, portal, "portal alert group missing")

	expected := map[string]struct {
		severity string
		runbook  string
	}{
		"BackendUnreachable": {severity: "critical", runbook: "docs/runbook-portal.md#backend-unreachable"},
		"BackendHighLatency": {severity: "warning", runbook: "docs/runbook-portal.md#backend-latency"},
		"HighErrorRate":      {severity: "critical", runbook: "docs/runbook-portal.md#high-error-rate"},
		"ProbeFailing":       {severity: "warning", runbook: "docs/runbook-portal.md#probe-failing"},
	}
	require.Len(t, portal.Rules, len(expected))

	for _, rule := range portal.Rules {
		want, ok := expected[rule.Alert]
		require.True(t, ok, "unexpected rule %q", rule.Alert)
		assert.Equal(t, want.severity, rule.Labels["severity"], rule.Alert)
		assert.Equal(t, want.runbook, rule.Annotations["runbook"], rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], rule.Alert)
		assert.NotEmpty(t, rule.Expr, rule.Alert)
		assert.NotEmpty(t, rule.For, rule.Alert)
	}
}
