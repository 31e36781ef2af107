package main

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/trademate/supportdesk/pkg/advice"
	"github.com/trademate/supportdesk/pkg/platform"
)

// AdviceInput is the argument of the financial_advice tool.
type AdviceInput struct {
	Query    string `json:"query" jsonschema:"the customer's question, in Hindi or English"`
	Language string `json:"language,omitempty" jsonschema:"response language: Hindi or English, a BCP 47 tag, or an Accept-Language list; detected from the query when empty"`
}

// AdviceOutput is the structured result of the financial_advice tool.
type AdviceOutput struct {
	Intent     string  `json:"intent"`
	Language   string  `json:"language"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Response   string  `json:"response"`
}

// ClassifyInput is the argument of the classify_query tool.
type ClassifyInput struct {
	Query string `json:"query" jsonschema:"the text to classify"`
}

// ClassifyOutput is the structured result of the classify_query tool.
type ClassifyOutput struct {
	Intent   string `json:"intent"`
	Language string `json:"detected_language"`
}

var errEmptyQuery = errors.New("query is required")

func newServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "trademate-advisor", Version: platform.Version},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "financial_advice",
		Description: "Answers an Indian retail investor question about mutual funds, trading, tax saving or accounts",
	}, financialAdvice)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_query",
		Description: "Classifies a customer query into a support intent and detects its language",
	}, classifyQuery)

	return server
}

func financialAdvice(_ context.Context, _ *mcp.CallToolRequest, in AdviceInput) (*mcp.CallToolResult, AdviceOutput, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, AdviceOutput{}, errEmptyQuery
	}
	lang := in.Language
	if lang == "" {
		lang = string(advice.DetectLanguage(in.Query))
	}

	a := advice.Respond(in.Query, lang)
	out := AdviceOutput{
		Intent:     string(a.Intent),
		Language:   string(a.Language),
		Category:   a.Category,
		Confidence: a.Confidence,
		Response:   a.Text,
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: a.Text}},
	}, out, nil
}

func classifyQuery(_ context.Context, _ *mcp.CallToolRequest, in ClassifyInput) (*mcp.CallToolResult, ClassifyOutput, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, ClassifyOutput{}, errEmptyQuery
	}
	out := ClassifyOutput{
		Intent:   string(advice.Classify(in.Query)),
		Language: string(advice.DetectLanguage(in.Query)),
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: out.Intent}},
	}, out, nil
}
