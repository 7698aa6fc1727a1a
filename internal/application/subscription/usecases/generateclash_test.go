package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/internal/domain/node"
	"veil/internal/domain/subscription"
)

func TestGenerateClashDocumentUseCase_Execute(t *testing.T) {
	nodes := []*node.Node{
		{ID: 1, Name: "hk-1", Host: "hk1.example.com", Port: 443, Protocol: node.ProtocolVLESS},
	}
	groups := []*subscription.ClashProxyGroup{
		{Name: "Proxy", Type: subscription.ProxyGroupSelect},
	}
	rules := []*subscription.ClashRule{
		{RuleType: "GEOIP", Value: "CN", Target: "DIRECT", NoResolve: true, IsActive: true},
		{RuleType: "MATCH", Target: "Proxy", IsActive: true},
	}

	renderer := &fakeRenderer{output: "mixed-port: 7890\n"}
	uc := NewGenerateClashDocumentUseCase(
		&fakeNodeRepo{nodes: nodes},
		&fakeClashRepo{groups: groups, rules: rules},
		renderer,
		testLogger(),
	)

	content, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mixed-port: 7890\n", content)

	assert.Equal(t, nodes, renderer.nodes, "renders live node configuration")
	assert.Equal(t, groups, renderer.groups)
	assert.Equal(t, rules, renderer.rules)
}
