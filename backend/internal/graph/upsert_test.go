package graph

import (
	"strings"
	"testing"
)

func TestUpsertSpecCypher(t *testing.T) {
	spec := upsertSpec{
		label:    "Thing",
		keyProps: []string{"alpha", "beta"},
		onCreate: []string{"n.created = 1"},
		onMatch:  []string{"n.matched = n.matched + 1"},
	}

	got := spec.cypher()
	if !strings.HasPrefix(got, "MERGE (n:Thing {alpha: $alpha, beta: $beta})") {
		t.Errorf("unexpected MERGE clause: %s", got)
	}
	if !strings.Contains(got, "ON CREATE SET n.created = 1") {
		t.Errorf("missing ON CREATE clause: %s", got)
	}
	if !strings.Contains(got, "ON MATCH SET n.matched = n.matched + 1") {
		t.Errorf("missing ON MATCH clause: %s", got)
	}
}

func TestUpsertSpecCypher_NoMatchClause(t *testing.T) {
	got := analysisUpsert.cypher()
	if strings.Contains(got, "ON MATCH") {
		t.Errorf("analysis upsert must not have an ON MATCH branch: %s", got)
	}
	if !strings.Contains(got, "MERGE (n:Analysis {id: $id})") {
		t.Errorf("unexpected analysis merge: %s", got)
	}
}

func TestFindingUpsertIdentity(t *testing.T) {
	got := findingUpsert.cypher()

	// Identity is the composite key, not the upstream per-review id
	if !strings.Contains(got, "{title: $title, severity: $severity, category: $category}") {
		t.Errorf("finding identity must be the composite key: %s", got)
	}
	for _, fragment := range []string{
		"n.occurrence_count = 1",
		"n.occurrence_count = n.occurrence_count + 1",
		"n.review_ids = [$reviewID]",
		"n.last_seen = datetime($seenAt)",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("missing fragment %q in:\n%s", fragment, got)
		}
	}
	// Identity fields are immutable once created
	for _, forbidden := range []string{"n.title =", "n.severity =", "n.category ="} {
		if strings.Contains(got, forbidden) {
			t.Errorf("identity field must not be rewritten: %q in:\n%s", forbidden, got)
		}
	}
}

func TestServiceUpsertCategorySetOnce(t *testing.T) {
	got := serviceUpsert.cypher()
	onMatch := got[strings.Index(got, "ON MATCH"):]
	if strings.Contains(onMatch, "category") {
		t.Errorf("category must only be set on create: %s", got)
	}
}
