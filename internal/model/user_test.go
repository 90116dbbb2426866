package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJSONOmitsPassword(t *testing.T) {
	u := User{ID: "u1", Name: "John", Email: "john@x.com", PasswordHash: "$2a$10$secret"}
	u.NormalizeLists()

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "u1", out["_id"])
	assert.NotContains(t, out, "password")
	assert.NotContains(t, out, "PasswordHash")
	assert.NotContains(t, string(raw), "secret")
	assert.Equal(t, []any{}, out["techStack"])
}

func TestApplyPatchOnlyTouchesPresentFields(t *testing.T) {
	u := User{Name: "John", Bio: "old", TechStack: []string{"Go"}}
	name := "Johnny"
	stack := []string{}

	u.ApplyPatch(ProfilePatch{Name: &name, TechStack: &stack})

	assert.Equal(t, "Johnny", u.Name)
	assert.Equal(t, "old", u.Bio)
	assert.Equal(t, []string{}, u.TechStack)
}

func TestProfilePatchEmpty(t *testing.T) {
	assert.True(t, ProfilePatch{}.Empty())
	bio := ""
	assert.False(t, ProfilePatch{Bio: &bio}.Empty())
}
