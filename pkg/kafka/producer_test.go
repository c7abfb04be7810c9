package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	messages, err := Encode([]Event{
		{Key: "run-1", Value: map[string]int{"queries": 2}},
		{Key: "run-1/cat", Value: []string{"a.txt"}},
	})
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, "run-1", string(messages[0].Key))
	var decoded map[string]int
	require.NoError(t, json.Unmarshal(messages[0].Value, &decoded))
	assert.Equal(t, 2, decoded["queries"])
	assert.JSONEq(t, `["a.txt"]`, string(messages[1].Value))
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	_, err := Encode([]Event{{Key: "bad", Value: make(chan int)}})
	assert.ErrorContains(t, err, "bad")
}
