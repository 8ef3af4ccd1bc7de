package model

import (
	"fmt"
	"strings"
)

// Category groups assets and provides the prefix their codes are built from.
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

// ValidatePrefix checks that a category prefix is 2-4 uppercase ASCII letters.
func ValidatePrefix(prefix string) error {
	if len(prefix) < 2 || len(prefix) > 4 {
		return fmt.Errorf("prefix must be 2 to 4 letters")
	}
	if strings.ToUpper(prefix) != prefix {
		return fmt.Errorf("prefix must be uppercase")
	}
	for _, r := range prefix {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("prefix must contain only letters")
		}
	}
	return nil
}
