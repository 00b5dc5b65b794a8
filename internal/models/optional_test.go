package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalUnmarshalDistinguishesAbsentNullValue(t *testing.T) {
	type payload struct {
		Genre Optional[string] `json:"genre"`
	}

	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValid bool
		wantValue string
	}{
		{name: "absent field", body: `{}`, wantSet: false},
		{name: "explicit null", body: `{"genre": null}`, wantSet: true, wantValid: false},
		{name: "explicit value", body: `{"genre": "Platformer"}`, wantSet: true, wantValid: true, wantValue: "Platformer"},
		{name: "empty string is a value", body: `{"genre": ""}`, wantSet: true, wantValid: true, wantValue: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))

			assert.Equal(t, tt.wantSet, p.Genre.Set)
			assert.Equal(t, tt.wantValid, p.Genre.Valid)
			if tt.wantValid {
				assert.Equal(t, tt.wantValue, p.Genre.Value)
			}
		})
	}
}

func TestOptionalUnmarshalRejectsWrongType(t *testing.T) {
	var field Optional[int]
	err := json.Unmarshal([]byte(`"three"`), &field)
	assert.Error(t, err)
}

func TestOptionalPtr(t *testing.T) {
	value := Some("RPG")
	require.NotNil(t, value.Ptr())
	assert.Equal(t, "RPG", *value.Ptr())

	assert.Nil(t, Null[string]().Ptr())
	assert.Nil(t, Optional[string]{}.Ptr())
}

func TestOptionalIsZeroTracksPresence(t *testing.T) {
	assert.True(t, Optional[string]{}.IsZero())
	assert.False(t, Some("RPG").IsZero())
	assert.False(t, Null[string]().IsZero())
}

func TestOptionalConstructors(t *testing.T) {
	some := Some(3)
	assert.True(t, some.Set)
	assert.True(t, some.Valid)
	assert.Equal(t, 3, some.Value)

	null := Null[int]()
	assert.True(t, null.Set)
	assert.False(t, null.Valid)
}
