package domain

import (
	"encoding/json"
	"errors"
)

// Scene is one shot of a project video, kept as the client sent it. Scenes
// have no identity of their own and are always replaced as a whole sequence;
// only the duration key is ever interpreted.
type Scene map[string]json.RawMessage

// SceneDuration is the key holding a scene's length in seconds.
const SceneDuration = "duration"

// Duration decodes the duration key. It reports false when the key is
// missing or null.
func (s Scene) Duration() (float64, bool, error) {
	raw, ok := s[SceneDuration]
	if !ok || string(raw) == "null" {
		return 0, false, nil
	}
	var d float64
	if err := json.Unmarshal(raw, &d); err != nil {
		return 0, false, errors.New("duration is not a number")
	}
	return d, true, nil
}

// Text returns the string under key, or "" when it is missing or not a string.
func (s Scene) Text(key string) string {
	var v string
	if raw, ok := s[key]; ok {
		_ = json.Unmarshal(raw, &v)
	}
	return v
}
