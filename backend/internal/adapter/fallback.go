package adapter

import (
	"context"
	"strconv"
	"strings"

	"tesseric/backend/internal/review"
)

// rulePattern ties trigger keywords to a canned finding
type rulePattern struct {
	keywords []string
	finding  review.Finding
}

var rulePatterns = []rulePattern{
	{
		keywords: []string{"single az", "one az", "1 az"},
		finding: review.Finding{
			ID:       "REL-001",
			Title:    "Single Availability Zone Deployment",
			Severity: review.SeverityHigh,
			Category: "reliability",
			Description: "Architecture deploys all resources to a single Availability Zone, " +
				"creating a single point of failure at the infrastructure level.",
			Impact: "Service becomes unavailable during AZ-level failure (entire data center outage).",
			Remediation: "Deploy resources across at least 2 Availability Zones within the same region. " +
				"Use Application Load Balancer or Network Load Balancer to distribute traffic. " +
				"Ensure RDS, EFS, and other stateful services are configured for Multi-AZ.",
		},
	},
	{
		keywords: []string{"no encryption", "unencrypted", "without encryption"},
		finding: review.Finding{
			ID:          "SEC-001",
			Title:       "Data Not Encrypted at Rest",
			Severity:    review.SeverityCritical,
			Category:    "security",
			Description: "Architecture stores data without encryption at rest (S3, EBS, RDS, etc.).",
			Impact: "Sensitive data exposed in case of unauthorized access to storage. " +
				"Compliance violations for HIPAA, PCI-DSS, GDPR.",
			Remediation: "Enable encryption at rest for all storage services: " +
				"S3 (SSE-S3, SSE-KMS, or SSE-C), RDS (enable encryption at creation), " +
				"EBS (enable default encryption in account settings). " +
				"Use AWS KMS for centralized key management.",
		},
	},
	{
		keywords: []string{"no backup", "no backups", "without backup"},
		finding: review.Finding{
			ID:          "REL-002",
			Title:       "No Backup Strategy Configured",
			Severity:    review.SeverityHigh,
			Category:    "reliability",
			Description: "Architecture does not implement automated backups for databases or critical data.",
			Impact: "Permanent data loss in case of accidental deletion, corruption, or ransomware attack. " +
				"No ability to restore to previous state.",
			Remediation: "Enable automated backups: RDS (automated backups with 7-35 day retention), " +
				"DynamoDB (Point-in-Time Recovery), EBS (snapshots via AWS Backup or Data Lifecycle Manager). " +
				"Define RPO and RTO targets and test the recovery process.",
		},
	},
	{
		keywords: []string{"public s3", "s3 public", "publicly accessible s3"},
		finding: review.Finding{
			ID:          "SEC-002",
			Title:       "S3 Bucket Publicly Accessible",
			Severity:    review.SeverityCritical,
			Category:    "security",
			Description: "S3 bucket configured with public access (bucket policy or ACLs allow public read/write).",
			Impact: "Sensitive data exposed to the internet. Potential for data leaks, compliance violations, " +
				"and massive AWS bills if data is exfiltrated at scale.",
			Remediation: "Remove public access: set 'Block Public Access' settings on the bucket. " +
				"Use IAM policies or S3 bucket policies with least-privilege access. " +
				"Enable S3 access logging and CloudTrail for an audit trail.",
		},
	},
	{
		keywords: []string{"no auto-scaling", "no autoscaling", "fixed capacity"},
		finding: review.Finding{
			ID:          "PERF-001",
			Title:       "No Auto-Scaling Configured",
			Severity:    review.SeverityMedium,
			Category:    "performance_efficiency",
			Description: "Architecture uses fixed capacity (static EC2 instances) without auto-scaling.",
			Impact: "Service degradation or outages during traffic spikes. " +
				"Over-provisioning during low traffic leads to wasted cost.",
			Remediation: "Implement Auto Scaling Groups for EC2 instances. " +
				"Configure scaling policies based on CPU, memory, or custom CloudWatch metrics. " +
				"Set appropriate min/max/desired capacity.",
		},
	},
	{
		keywords: []string{"over-provisioned", "overprovisioned", "too large"},
		finding: review.Finding{
			ID:          "COST-001",
			Title:       "Over-Provisioned Resources",
			Severity:    review.SeverityMedium,
			Category:    "cost_optimization",
			Description: "Architecture uses instance types or capacity larger than workload requirements.",
			Impact:      "Wasted spend on unused capacity. Could be 30-70% cost reduction opportunity.",
			Remediation: "Right-size resources: use AWS Compute Optimizer recommendations. " +
				"Start with smaller instance types and scale up based on metrics. " +
				"Consider Reserved Instances or Savings Plans for predictable workloads.",
		},
	},
}

// genericFinding is raised when nothing else matched, so a review never
// comes back empty.
var genericFinding = review.Finding{
	ID:       "GEN-001",
	Title:    "Architecture Requires Detailed Review",
	Severity: review.SeverityLow,
	Category: "operational_excellence",
	Description: "No specific anti-patterns detected in provided description. " +
		"However, architecture review is recommended to ensure Well-Architected alignment.",
	Impact: "Potential issues not detected by automated pattern matching. " +
		"Manual review recommended for comprehensive assessment.",
	Remediation: "Review AWS Well-Architected Framework pillars: Operational Excellence, Security, " +
		"Reliability, Performance Efficiency, Cost Optimization, and Sustainability.",
}

// PatternAnalyzer is the rule-based analyzer used when no model endpoint
// is configured or the model call fails.
type PatternAnalyzer struct{}

// NewPatternAnalyzer creates the rule-based analyzer
func NewPatternAnalyzer() *PatternAnalyzer {
	return &PatternAnalyzer{}
}

// Method identifies how the analysis was produced, for the metrics breakdown
func (a *PatternAnalyzer) Method() string {
	return "pattern_matching_fallback"
}

// Analyze scans the description for known anti-pattern keywords
func (a *PatternAnalyzer) Analyze(_ context.Context, designText, tone string) (*Result, error) {
	lower := strings.ToLower(designText)

	var findings []review.Finding
	for _, pattern := range rulePatterns {
		for _, keyword := range pattern.keywords {
			if strings.Contains(lower, keyword) {
				findings = append(findings, pattern.finding)
				break
			}
		}
	}
	if len(findings) == 0 {
		findings = append(findings, genericFinding)
	}

	return &Result{
		Findings: findings,
		Summary:  buildSummary(findings, tone),
	}, nil
}

// buildSummary phrases the headline according to how bad things look
func buildSummary(findings []review.Finding, tone string) string {
	pillars := make(map[string]struct{})
	criticalHigh := 0
	for _, f := range findings {
		pillars[f.Category] = struct{}{}
		if f.Severity == review.SeverityCritical || f.Severity == review.SeverityHigh {
			criticalHigh++
		}
	}

	var b strings.Builder
	if criticalHigh > 0 {
		titles := make([]string, 0, 3)
		for _, f := range findings {
			if len(titles) == 3 {
				break
			}
			titles = append(titles, f.Title)
		}
		b.WriteString("Found ")
		b.WriteString(plural(len(findings), "issue"))
		b.WriteString(" across ")
		b.WriteString(plural(len(pillars), "Well-Architected pillar"))
		b.WriteString(", including ")
		b.WriteString(plural(criticalHigh, "critical/high severity finding"))
		b.WriteString(". Primary concerns: ")
		b.WriteString(strings.Join(titles, ", "))
		b.WriteString(".")
	} else {
		b.WriteString("Found ")
		b.WriteString(plural(len(findings), "low/medium severity issue"))
		b.WriteString(" across ")
		b.WriteString(plural(len(pillars), "pillar"))
		b.WriteString(". Architecture is generally well-aligned with AWS best practices.")
	}

	summary := b.String()
	if tone == "roast" {
		summary = strings.ReplaceAll(summary, "Found", "Oof, found")
		summary = strings.ReplaceAll(summary, "Primary concerns:", "Let's talk about:")
	}
	return summary
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
