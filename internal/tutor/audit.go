package tutor

import (
	"fmt"

	"github.com/abhisek/pathwise/internal/generation"
)

// WarnRisk is the audit risk above which lecture content is shown with a
// warning instead of a confidence figure.
const WarnRisk = 0.3

// AuditView is the presentable form of an audit report.
type AuditView struct {
	Warning bool
	Text    string
}

// DescribeAudit renders report for display.
func DescribeAudit(report generation.AuditReport) AuditView {
	if report.RiskScore > WarnRisk {
		return AuditView{
			Warning: true,
			Text:    fmt.Sprintf("High hallucination risk (%.2f): %s", report.RiskScore, report.FlaggedReason),
		}
	}
	return AuditView{Text: fmt.Sprintf("Content confidence: %.0f%%", (1-report.RiskScore)*100)}
}
