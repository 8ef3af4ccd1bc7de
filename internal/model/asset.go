package model

import (
	"fmt"
	"time"
)

// AssetState is the lifecycle state of an asset.
type AssetState string

// Asset states.
const (
	AssetAvailable           AssetState = "available"
	AssetNotAvailable        AssetState = "not_available"
	AssetAssigned            AssetState = "assigned"
	AssetWaitingForRecycling AssetState = "waiting_for_recycling"
	AssetRecycled            AssetState = "recycled"
)

// Valid reports whether s is a known asset state.
func (s AssetState) Valid() bool {
	switch s {
	case AssetAvailable, AssetNotAvailable, AssetAssigned, AssetWaitingForRecycling, AssetRecycled:
		return true
	}
	return false
}

// Label returns the human-readable form used in messages.
func (s AssetState) Label() string {
	switch s {
	case AssetAvailable:
		return "Available"
	case AssetNotAvailable:
		return "Not available"
	case AssetAssigned:
		return "Assigned"
	case AssetWaitingForRecycling:
		return "Waiting for recycling"
	case AssetRecycled:
		return "Recycled"
	}
	return string(s)
}

// assetTransitions lists the states an asset may be moved to by hand.
// Assigned is reached only through assignments.
var assetTransitions = map[AssetState][]AssetState{
	AssetAvailable:           {AssetNotAvailable, AssetWaitingForRecycling},
	AssetNotAvailable:        {AssetAvailable, AssetWaitingForRecycling},
	AssetWaitingForRecycling: {AssetRecycled, AssetAvailable},
}

// CanTransitionAsset reports whether an asset may be moved from one state to another by hand.
func CanTransitionAsset(from, to AssetState) bool {
	for _, s := range assetTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Asset is a single tracked piece of equipment.
type Asset struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	CategoryID    string     `json:"category_id"`
	Name          string     `json:"name"`
	Specification string     `json:"specification,omitempty"`
	InstalledDate time.Time  `json:"installed_date"`
	Location      string     `json:"location"`
	State         AssetState `json:"state"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Version       int64      `json:"version"`

	// Joined fields (not always populated).
	CategoryName string `json:"category_name,omitempty"`
}

// AssetCode builds the code for the n-th asset of a category prefix.
func AssetCode(prefix string, n int) string {
	return fmt.Sprintf("%s%06d", prefix, n)
}

// AssetPatch holds the editable fields of an asset. Nil fields are left unchanged.
type AssetPatch struct {
	Name          *string     `json:"name,omitempty"`
	Specification *string     `json:"specification,omitempty"`
	InstalledDate *time.Time  `json:"installed_date,omitempty"`
	State         *AssetState `json:"state,omitempty"`
}

// Apply copies the set fields of the patch onto the asset.
func (p AssetPatch) Apply(a *Asset) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Specification != nil {
		a.Specification = *p.Specification
	}
	if p.InstalledDate != nil {
		a.InstalledDate = *p.InstalledDate
	}
	if p.State != nil {
		a.State = *p.State
	}
}

// NewAsset is the input for creating an asset.
type NewAsset struct {
	Name          string     `json:"name"`
	CategoryID    string     `json:"category_id"`
	Specification string     `json:"specification"`
	InstalledDate time.Time  `json:"installed_date"`
	State         AssetState `json:"state"`
}

// Asset sort fields.
const (
	AssetSortName          = "name"
	AssetSortCode          = "code"
	AssetSortCategory      = "category"
	AssetSortState         = "state"
	AssetSortInstalledDate = "installedDate"
)

// Paging defaults and limits for asset listings.
const (
	DefaultPage     = 1
	DefaultPageSize = 5
	MaxPageSize     = 100
)

// DefaultAssetStates is the state filter applied when none is given.
var DefaultAssetStates = []AssetState{AssetAvailable, AssetNotAvailable, AssetAssigned}

// AssetFilter selects and orders a page of assets.
type AssetFilter struct {
	Search      string
	States      []AssetState
	CategoryIDs []string
	Location    string
	SortBy      string
	Descending  bool
	Page        int
	PageSize    int
}

// AssetPage is one page of a filtered asset listing.
type AssetPage struct {
	Items    []Asset `json:"items"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}
