package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/platform"
)

const rule = "----------------------------------------"

// rupeePrinter groups digits the way the demo prints rupee amounts.
func rupeePrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

type demo struct {
	svc *platform.Service
	out io.Writer
	p   *message.Printer
}

func newDemo(svc *platform.Service, out io.Writer) *demo {
	return &demo{svc: svc, out: out, p: rupeePrinter()}
}

func (d *demo) printf(format string, args ...any) {
	d.p.Fprintf(d.out, format, args...)
}

func (d *demo) step(n int, title string) {
	d.printf("\nStep %d: %s\n%s\n", n, title, rule)
}

func (d *demo) run(ctx context.Context) error {
	d.printf("TradeMate AI Support + WhatsApp SaaS Platform Demo\n")
	d.printf("%s\n", strings.Repeat("=", 70))

	steps := []func(context.Context) error{
		d.onboarding,
		d.support,
		d.analytics,
		d.dashboard,
		d.privacy,
		d.marketAnalysis,
		d.roi,
	}
	for _, s := range steps {
		if err := s(ctx); err != nil {
			return err
		}
	}

	d.printf("\nDemo completed successfully.\n")
	d.printf("%s\n", strings.Repeat("=", 70))
	return nil
}

func (d *demo) onboarding(ctx context.Context) error {
	d.step(1, "Partner Onboarding")

	hdfc, err := d.svc.OnboardPartner(ctx, &api.OnboardPartnerRequest{
		PartnerID:       "hdfc_bank",
		CompanyName:     "HDFC Bank",
		BusinessType:    "bank",
		PlatformTier:    api.TierEnterprise,
		IntegrationType: api.IntegrationFull,
		GDPRRequired:    true,
		RBIRequired:     true,
		SEBIRequired:    true,
		KnowledgeBase: map[string]any{
			"banking_products":    []string{"savings", "current", "loans", "credit_cards"},
			"investment_products": []string{"mutual_funds", "insurance", "gold"},
			"digital_services":    []string{"net_banking", "mobile_app", "upi"},
		},
		WhatsApp: &api.WhatsAppConfig{
			BusinessNumber: "919876543210",
			AccessToken:    "demo_token_hdfc",
			VerifyToken:    "hdfc_verify_123",
			WebhookURL:     "https://hdfc.com/whatsapp-webhook",
			WebhookSecret:  "hdfc_secret_key",
		},
	})
	if err != nil {
		return fmt.Errorf("onboarding hdfc_bank: %w", err)
	}
	d.printf("HDFC Bank onboarded as %s\n", hdfc.PlatformTier)
	d.printf("   Features: %s\n", strings.Join(platform.FeatureNames(hdfc.FeaturesEnabled), ", "))
	d.printf("   Monthly cost: ₹%d\n", hdfc.MonthlyBaseCost)
	d.printf("   Included interactions: %d\n", hdfc.IncludedInteractions)

	groww, err := d.svc.OnboardPartner(ctx, &api.OnboardPartnerRequest{
		PartnerID:       "groww",
		CompanyName:     "Groww",
		BusinessType:    "fintech",
		PlatformTier:    api.TierProfessional,
		IntegrationType: api.IntegrationAPIOnly,
		KnowledgeBase: map[string]any{
			"investment_products": []string{"mutual_funds", "stocks", "etfs"},
			"services":            []string{"sip", "lumpsum", "portfolio_tracking"},
		},
	})
	if err != nil {
		return fmt.Errorf("onboarding groww: %w", err)
	}
	d.printf("\nGroww onboarded as %s\n", groww.PlatformTier)
	d.printf("   Integration: %s\n", groww.IntegrationType)
	d.printf("   Monthly cost: ₹%d\n", groww.MonthlyBaseCost)
	return nil
}

func (d *demo) support(ctx context.Context) error {
	d.step(2, "AI Support Processing")

	queries := []api.SupportRequest{
		{
			PartnerID:  "hdfc_bank",
			Channel:    api.ChannelWhatsApp,
			CustomerID: "customer_001",
			QueryText:  "मेरे खाते का बैलेंस क्या है?",
			Language:   "Hindi",
			Context:    map[string]any{"customer_tier": "premium", "account_type": "savings"},
		},
		{
			PartnerID:  "hdfc_bank",
			Channel:    api.ChannelAPI,
			CustomerID: "customer_002",
			QueryText:  "I want to invest ₹50,000 in mutual funds. Please suggest good options.",
			Language:   "English",
			Context:    map[string]any{"age": 32, "risk_profile": "moderate"},
		},
		{
			PartnerID:  "groww",
			Channel:    api.ChannelAPI,
			CustomerID: "customer_003",
			QueryText:  "SIP में निवेश कैसे करें? कौन से फंड अच्छे हैं?",
			Language:   "Hindi",
			Context:    map[string]any{"monthly_income": 50000, "investment_goal": "wealth_creation"},
		},
	}

	for i := range queries {
		q := &queries[i]
		d.printf("\nProcessing Query %d:\n", i+1)
		d.printf("Partner: %s\n", q.PartnerID)
		d.printf("Query: %s\n", q.QueryText)
		d.printf("Language: %s\n", q.Language)

		in, err := d.svc.ProcessSupportRequest(ctx, q)
		if err != nil {
			return fmt.Errorf("processing query %d: %w", i+1, err)
		}
		d.printf("Response generated in %.2fs\n", in.ProcessingTime)
		d.printf("Intent detected: %s\n", in.Intent)
		d.printf("Escalated: %t\n", in.Escalated)
		d.printf("Privacy level: %s\n", in.PrivacyLevel)
		d.printf("Response preview: %s\n", preview(in.ResponseText, 100))
	}
	return nil
}

func (d *demo) analytics(ctx context.Context) error {
	d.step(3, "Analytics & Reporting")

	report, err := d.svc.Analytics(ctx, "hdfc_bank", 7)
	if err != nil {
		return fmt.Errorf("hdfc_bank analytics: %w", err)
	}
	d.printf("\nHDFC Bank Analytics:\n")
	d.printf("Total interactions: %d\n", report.Summary.TotalInteractions)
	d.printf("Avg processing time: %.3fs\n", report.Summary.AvgResponseTime)
	d.printf("Escalation rate: %.1f%%\n", report.Summary.EscalationRate)
	d.printf("SLA compliance: %.1f%%\n", report.Performance.SLACompliance)
	d.printf("Cost per interaction: ₹%.2f\n", report.Performance.CostPerInteraction)

	impact := report.BusinessImpact
	d.printf("\nBusiness Impact:\n")
	d.printf("Response time improvement: %s\n", impact.ResponseTimeImprovement)
	d.printf("Cost reduction: %d%%\n", impact.CostReductionPercent)
	d.printf("Automation rate: %.1f%%\n", report.Performance.AutomationRate)
	return nil
}

func (d *demo) dashboard(ctx context.Context) error {
	d.step(4, "Partner Dashboard")

	dash, err := d.svc.Dashboard(ctx, "hdfc_bank")
	if err != nil {
		return fmt.Errorf("hdfc_bank dashboard: %w", err)
	}
	d.printf("\nHDFC Bank Dashboard:\n")
	d.printf("Company: %s\n", dash.PartnerInfo.CompanyName)
	d.printf("Platform tier: %s\n", dash.PartnerInfo.PlatformTier)
	d.printf("Integration: %s\n", dash.PartnerInfo.IntegrationType)

	m := dash.RealTimeMetrics
	d.printf("\nReal-time metrics:\n")
	d.printf("- Interactions today: %d\n", m.InteractionsToday)
	d.printf("- Avg response time: %.3fs\n", m.AvgResponseTime)
	d.printf("- System status: %s\n", m.SystemStatus)
	d.printf("- API uptime: %s\n", m.APIUptime)

	b := dash.BillingSummary
	d.printf("\nBilling summary:\n")
	d.printf("- Usage: %d/%d (%.1f%%)\n", b.CurrentUsage, b.MonthlyLimit, b.UsagePercentage)
	d.printf("- Estimated cost: ₹%d\n", b.EstimatedCost)
	return nil
}

func (d *demo) privacy(ctx context.Context) error {
	d.step(5, "Privacy & Compliance")

	report, err := d.svc.Analytics(ctx, "hdfc_bank", 7)
	if err != nil {
		return fmt.Errorf("hdfc_bank privacy report: %w", err)
	}
	s := report.Privacy.Summary
	d.printf("\nPrivacy Analytics:\n")
	d.printf("Privacy tier: %s\n", s.PrivacyTier)
	d.printf("ZK proofs generated: %d\n", s.ZeroKnowledgeProofsGenerated)
	d.printf("Privacy violations: %d\n", s.PrivacyViolations)
	d.printf("Compliance score: %.1f\n", s.ComplianceScore)

	c := report.Privacy.Compliance
	d.printf("\nCompliance status:\n")
	d.printf("- GDPR: %s\n", check(c.GDPRCompliance))
	d.printf("- RBI: %s\n", check(c.RBICompliance))
	d.printf("- SEBI: %s\n", check(c.SEBICompliance))
	return nil
}

func (d *demo) marketAnalysis(ctx context.Context) error {
	d.step(6, "Market Analysis Showcase")

	q := &api.SupportRequest{
		PartnerID:  "hdfc_bank",
		Channel:    api.ChannelAPI,
		CustomerID: "market_demo",
		QueryText:  "80C में कौन से options हैं? Tax saving के लिए क्या करूं?",
		Language:   "Hindi",
		Context:    map[string]any{"annual_income": 800000, "age": 35},
	}
	d.printf("Market Analysis Demo Query:\n")
	d.printf("Query: %s\n", q.QueryText)

	in, err := d.svc.ProcessSupportRequest(ctx, q)
	if err != nil {
		return fmt.Errorf("market analysis: %w", err)
	}
	d.printf("Market analysis completed in %.2fs\n", in.ProcessingTime)
	d.printf("Intent: %s\n", in.Intent)

	d.printf("\nMarket Analysis Response Preview:\n")
	lines := strings.Split(in.ResponseText, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			d.printf("  %s\n", line)
		}
	}
	return nil
}

func (d *demo) roi(ctx context.Context) error {
	d.step(7, "ROI Demonstration")

	status, err := d.svc.Status(ctx)
	if err != nil {
		return fmt.Errorf("platform status: %w", err)
	}
	roi, err := d.svc.ROI(ctx)
	if err != nil {
		return fmt.Errorf("roi: %w", err)
	}

	partners, err := d.svc.Partners(ctx)
	if err != nil {
		return fmt.Errorf("partners: %w", err)
	}

	d.printf("\nPlatform Performance Summary:\n")
	d.printf("Total partners onboarded: %d\n", status.ActivePartners)
	for _, p := range partners {
		d.printf("  - %s (%s): %s\n", p.CompanyName, p.ID, p.Tier)
	}
	d.printf("Total interactions processed: %d\n", roi.TotalInteractions)

	d.printf("\nCost Comparison:\n")
	d.printf("Traditional support cost per interaction: ₹%d\n", roi.TraditionalCostPerInteraction)
	d.printf("Platform cost per interaction: ₹%d\n", roi.PlatformCostPerInteraction)
	d.printf("Savings per interaction: ₹%d\n", roi.SavingsPerInteraction)
	d.printf("Total savings for demo interactions: ₹%d\n", roi.TotalSavings)
	d.printf("Cost reduction: %.1f%%\n", roi.CostReductionPercent)
	return nil
}

// preview shortens s to at most n runes.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func check(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
