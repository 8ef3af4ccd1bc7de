package model

import (
	"testing"
	"time"
)

func TestAssetCode(t *testing.T) {
	tests := []struct {
		prefix string
		n      int
		want   string
	}{
		{"LA", 1, "LA000001"},
		{"MO", 42, "MO000042"},
		{"PC", 123456, "PC123456"},
	}

	for _, tt := range tests {
		if got := AssetCode(tt.prefix, tt.n); got != tt.want {
			t.Errorf("AssetCode(%q, %d) = %q, want %q", tt.prefix, tt.n, got, tt.want)
		}
	}
}

func TestCanTransitionAsset(t *testing.T) {
	tests := []struct {
		from, to AssetState
		want     bool
	}{
		{AssetAvailable, AssetNotAvailable, true},
		{AssetAvailable, AssetWaitingForRecycling, true},
		{AssetNotAvailable, AssetAvailable, true},
		{AssetWaitingForRecycling, AssetRecycled, true},
		{AssetWaitingForRecycling, AssetAvailable, true},
		{AssetAvailable, AssetAssigned, false},
		{AssetAvailable, AssetRecycled, false},
		{AssetAssigned, AssetAvailable, false},
		{AssetRecycled, AssetAvailable, false},
		{AssetAvailable, AssetAvailable, false},
	}

	for _, tt := range tests {
		if got := CanTransitionAsset(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionAsset(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestAssetPatchApply(t *testing.T) {
	installed := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	a := Asset{Name: "Laptop", Specification: "8GB", State: AssetAvailable}

	name := "Laptop HP"
	state := AssetNotAvailable
	AssetPatch{Name: &name, InstalledDate: &installed, State: &state}.Apply(&a)

	if a.Name != "Laptop HP" {
		t.Errorf("expected name 'Laptop HP', got %q", a.Name)
	}
	if a.Specification != "8GB" {
		t.Errorf("expected specification to be unchanged, got %q", a.Specification)
	}
	if !a.InstalledDate.Equal(installed) {
		t.Errorf("expected installed date %v, got %v", installed, a.InstalledDate)
	}
	if a.State != AssetNotAvailable {
		t.Errorf("expected state not_available, got %s", a.State)
	}
}

func TestValidatePrefix(t *testing.T) {
	tests := []struct {
		prefix  string
		wantErr bool
	}{
		{"LA", false},
		{"MON", false},
		{"L", true},
		{"la", true},
		{"L1", true},
		{"TOOLONG", true},
	}

	for _, tt := range tests {
		err := ValidatePrefix(tt.prefix)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePrefix(%q) error = %v, wantErr %v", tt.prefix, err, tt.wantErr)
		}
	}
}
