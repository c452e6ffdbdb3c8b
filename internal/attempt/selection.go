package attempt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeSelection reads the multi-select wire value. An empty value is an empty set.
func DecodeSelection(encoded string) ([]string, error) {
	if strings.TrimSpace(encoded) == "" {
		return nil, nil
	}
	var selected []string
	if err := json.Unmarshal([]byte(encoded), &selected); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	return selected, nil
}

func EncodeSelection(selected []string) string {
	if selected == nil {
		selected = []string{}
	}
	encoded, _ := json.Marshal(selected)
	return string(encoded)
}

// ToggleSelection adds or removes option, keeping selection order. Selecting an
// option twice does not duplicate it.
func ToggleSelection(encoded, option string, selected bool) (string, error) {
	current, err := DecodeSelection(encoded)
	if err != nil {
		return "", err
	}

	next := make([]string, 0, len(current)+1)
	present := false
	for _, item := range current {
		if item == option {
			present = true
			if !selected {
				continue
			}
		}
		next = append(next, item)
	}
	if selected && !present {
		next = append(next, option)
	}
	return EncodeSelection(next), nil
}

// IsSelected reports whether option is part of the encoded selection.
func IsSelected(encoded, option string) bool {
	current, err := DecodeSelection(encoded)
	if err != nil {
		return false
	}
	for _, item := range current {
		if item == option {
			return true
		}
	}
	return false
}

// FormatRemaining renders seconds as MM:SS.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
