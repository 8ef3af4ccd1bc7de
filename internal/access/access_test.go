package access

import (
	"testing"

	"github.com/erazemk/assetdesk/internal/model"
)

func TestAuthorize(t *testing.T) {
	staffHN := &model.User{Role: model.RoleStaff, Location: "HN"}
	adminHN := &model.User{Role: model.RoleAdmin, Location: "HN"}
	disabledHN := &model.User{Role: model.RoleStaff, Location: "HN", Disabled: true}
	disabledAdmin := &model.User{Role: model.RoleAdmin, Location: "HCM", Disabled: true}

	tests := []struct {
		name   string
		rule   Rule
		user   *model.User
		target string
		want   Decision
	}{
		{"same location", Rule{}, staffHN, "HN", Allow},
		{"other location", Rule{}, staffHN, "HCM", DenyLocationMismatch},
		{"disabled same location", Rule{}, disabledHN, "HN", DenyAccountDisabled},
		{"disabled other location", Rule{}, disabledHN, "HCM", DenyAccountDisabled},
		{"admin scoped by default", Rule{}, adminHN, "HCM", DenyLocationMismatch},
		{"admin bypass", Rule{AdminBypassesLocation: true}, adminHN, "HCM", Allow},
		{"bypass ignores staff", Rule{AdminBypassesLocation: true}, staffHN, "HCM", DenyLocationMismatch},
		{"bypass still checks disabled", Rule{AdminBypassesLocation: true}, disabledAdmin, "HN", DenyAccountDisabled},
	}

	for _, tt := range tests {
		if got := tt.rule.Authorize(tt.user, tt.target); got != tt.want {
			t.Errorf("%s: Authorize = %v, want %v", tt.name, got, tt.want)
		}
	}
}
