package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademate/supportdesk/pkg/advice"
)

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	go func() {
		_ = newServer().Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func structured(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestListTools(t *testing.T) {
	session := connect(t)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
		assert.NotNil(t, tool.InputSchema, tool.Name)
	}
	assert.True(t, names["financial_advice"])
	assert.True(t, names["classify_query"])
}

func TestFinancialAdvice(t *testing.T) {
	session := connect(t)

	tests := []struct {
		name       string
		args       map[string]any
		wantIntent advice.Intent
		wantLang   advice.Language
	}{
		{"english tag", map[string]any{"query": "Best SIP for beginners?", "language": "en-IN"}, advice.IntentMutualFund, advice.English},
		{"hindi detected", map[string]any{"query": "टैक्स कैसे बचाएं?"}, advice.IntentTax, advice.Hindi},
		{"english detected", map[string]any{"query": "hello there"}, advice.IntentGeneral, advice.English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
				Name:      "financial_advice",
				Arguments: tt.args,
			})
			require.NoError(t, err)
			require.False(t, res.IsError)

			var out AdviceOutput
			structured(t, res, &out)
			assert.Equal(t, string(tt.wantIntent), out.Intent)
			assert.Equal(t, string(tt.wantLang), out.Language)
			assert.NotEmpty(t, out.Response)

			require.NotEmpty(t, res.Content)
			text, ok := res.Content[0].(*mcp.TextContent)
			require.True(t, ok)
			assert.Equal(t, out.Response, text.Text)
		})
	}
}

func TestClassifyQuery(t *testing.T) {
	session := connect(t)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "classify_query",
		Arguments: map[string]any{"query": "शेयर trading account"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out ClassifyOutput
	structured(t, res, &out)
	assert.Equal(t, string(advice.IntentTrading), out.Intent)
	assert.Equal(t, string(advice.Hindi), out.Language)
}

func TestEmptyQueryIsToolError(t *testing.T) {
	session := connect(t)

	for _, name := range []string{"financial_advice", "classify_query"} {
		res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name:      name,
			Arguments: map[string]any{"query": "  "},
		})
		require.NoError(t, err, name)
		assert.True(t, res.IsError, name)
	}
}
