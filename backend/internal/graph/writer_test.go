package graph

import (
	"context"
	"testing"

	"tesseric/backend/internal/taxonomy"
)

func TestServicePairs(t *testing.T) {
	services := []taxonomy.Service{
		{Name: "EC2", Category: "compute"},
		{Name: "RDS", Category: "database"},
		{Name: "S3", Category: "storage"},
	}

	pairs := servicePairs(services)
	want := [][2]string{
		{"EC2", "RDS"},
		{"EC2", "S3"},
		{"RDS", "S3"},
	}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(pairs), len(want))
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pair %d: got %v, want %v", i, pairs[i], want[i])
		}
	}
}

func TestServicePairs_Degenerate(t *testing.T) {
	if pairs := servicePairs(nil); pairs != nil {
		t.Errorf("no services must yield no pairs, got %v", pairs)
	}
	single := []taxonomy.Service{{Name: "EC2", Category: "compute"}}
	if pairs := servicePairs(single); pairs != nil {
		t.Errorf("one service must yield no pairs, got %v", pairs)
	}
}

func TestNullableInt64(t *testing.T) {
	if v := nullableInt64(0); v != nil {
		t.Errorf("zero must map to nil, got %v", v)
	}
	if v := nullableInt64(8500); v != int64(8500) {
		t.Errorf("got %v, want 8500", v)
	}
}

func TestWriteAnalysis_DisabledStore(t *testing.T) {
	repo := NewRepository(nil)
	if ok := repo.WriteAnalysis(context.Background(), sampleRecord("rev-disabled")); ok {
		t.Error("write against a disabled store must report failure")
	}
}
