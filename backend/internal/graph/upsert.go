package graph

import "strings"

// upsertSpec captures what counts as identity for one node kind and how the
// node changes on first sight versus on a repeat. Analysis keys on its
// globally unique id, Finding on the (title, severity, category) composite,
// Service on name alone; all three share the one MERGE builder below, and
// concurrent creators for the same key are serialized by the store's MERGE.
type upsertSpec struct {
	label    string
	keyProps []string // identity properties, bound to same-named parameters
	onCreate []string // SET fragments applied when the node is created
	onMatch  []string // SET fragments applied when the node already exists
}

// cypher renders the MERGE statement for this spec. The node variable is
// always n; fragments reference query parameters by name.
func (s upsertSpec) cypher() string {
	var b strings.Builder
	b.WriteString("MERGE (n:")
	b.WriteString(s.label)
	b.WriteString(" {")
	for i, key := range s.keyProps {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(key)
		b.WriteString(": $")
		b.WriteString(key)
	}
	b.WriteString("})")
	if len(s.onCreate) > 0 {
		b.WriteString("\nON CREATE SET ")
		b.WriteString(strings.Join(s.onCreate, ",\n\t"))
	}
	if len(s.onMatch) > 0 {
		b.WriteString("\nON MATCH SET ")
		b.WriteString(strings.Join(s.onMatch, ",\n\t"))
	}
	return b.String()
}

// analysisUpsert creates the Analysis node. Review ids are minted fresh per
// review, so the merge never matches an existing node in normal operation
// and the onMatch branch is deliberately empty.
var analysisUpsert = upsertSpec{
	label:    "Analysis",
	keyProps: []string{"id"},
	onCreate: []string{
		"n.created_at = datetime($createdAt)",
		"n.score = $score",
		"n.summary = $summary",
		"n.tone = $tone",
		"n.processing_time_ms = $processingTimeMs",
		"n.input_method = $inputMethod",
		"n.analysis_method = $analysisMethod",
		"n.architecture_description = $architectureDescription",
		"n.architecture_pattern = $architecturePattern",
	},
}

// findingUpsert deduplicates findings across analyses. Identity fields are
// immutable after creation; repeats bump the occurrence counter, refresh
// last_seen, and record the triggering review id if it is new.
var findingUpsert = upsertSpec{
	label:    "Finding",
	keyProps: []string{"title", "severity", "category"},
	onCreate: []string{
		"n.id = $surrogateID",
		"n.description = $description",
		"n.impact = $impact",
		"n.remediation = $remediation",
		"n.first_seen = datetime($seenAt)",
		"n.last_seen = datetime($seenAt)",
		"n.occurrence_count = 1",
		"n.review_ids = [$reviewID]",
	},
	onMatch: []string{
		"n.occurrence_count = n.occurrence_count + 1",
		"n.last_seen = datetime($seenAt)",
		"n.review_ids = CASE WHEN $reviewID IN n.review_ids THEN n.review_ids ELSE n.review_ids + $reviewID END",
	},
}

// serviceUpsert accumulates services across all analyses. Category is fixed
// by whichever write created the node; later writes only bump the counter.
var serviceUpsert = upsertSpec{
	label:    "Service",
	keyProps: []string{"name"},
	onCreate: []string{
		"n.category = $category",
		"n.occurrence_count = 1",
	},
	onMatch: []string{
		"n.occurrence_count = n.occurrence_count + 1",
	},
}

// topologyServiceUpsert guarantees a topology endpoint exists without
// counting it as a finding mention.
var topologyServiceUpsert = upsertSpec{
	label:    "Service",
	keyProps: []string{"name"},
	onCreate: []string{
		"n.category = $category",
		"n.occurrence_count = 0",
	},
}
