package types

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexListDecodesScalarAndArray(t *testing.T) {
	var body struct {
		Profiles FlexList[string] `json:"profiles"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"profiles":"base"}`), &body))
	assert.Equal(t, []string{"base"}, body.Profiles.Slice())

	require.NoError(t, json.Unmarshal([]byte(`{"profiles":["a","b"]}`), &body))
	assert.Equal(t, []string{"a", "b"}, body.Profiles.Slice())

	require.NoError(t, json.Unmarshal([]byte(`{"profiles":[]}`), &body))
	assert.NotNil(t, body.Profiles)
	assert.Empty(t, body.Profiles)

	assert.Error(t, json.Unmarshal([]byte(`{"profiles":{"a":1}}`), &body))
}

func TestFlexIntDecodesNumberAndString(t *testing.T) {
	var body struct {
		Weight *FlexInt `json:"weight"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"weight":-5}`), &body))
	require.NotNil(t, body.Weight)
	assert.Equal(t, -5, body.Weight.Int())

	require.NoError(t, json.Unmarshal([]byte(`{"weight":"12"}`), &body))
	assert.Equal(t, 12, body.Weight.Int())

	require.NoError(t, json.Unmarshal([]byte(`{"weight":5000000000}`), &body))
	assert.Equal(t, 5000000000, body.Weight.Int())
	require.NoError(t, json.Unmarshal([]byte(`{"weight":"5000000000"}`), &body))
	assert.Equal(t, 5000000000, body.Weight.Int())

	assert.Error(t, json.Unmarshal([]byte(`{"weight":"heavy"}`), &body))
	assert.Error(t, json.Unmarshal([]byte(`{"weight":1.5}`), &body))

	out, err := json.Marshal(FlexInt(7))
	require.NoError(t, err)
	assert.Equal(t, "7", string(out))
}

func TestValidate(t *testing.T) {
	type body struct {
		Name string `json:"name" validate:"required,identifier"`
	}

	assert.NoError(t, Validate(&body{Name: "node-1.example_a"}))

	err := Validate(&body{})
	var ce *CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusBadRequest, ce.Code)
	assert.Equal(t, "Missing required field 'name'", ce.Message)

	err = Validate(&body{Name: "bad name"})
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrTypeValidation, ce.Type)
	assert.Equal(t, "Invalid name 'bad name'", ce.Message)
}

func TestCustomErrorUnwrap(t *testing.T) {
	cause := errors.New("duplicate key")
	err := NewConflictError("Conflict", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusConflict, err.Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, NewCapacityError("too many").Code)
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("Host '%s' not found", "n1").Code)
	assert.Equal(t, "Host 'n1' not found", NewNotFoundError("Host '%s' not found", "n1").Message)
}
