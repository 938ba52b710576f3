package storage

import (
	"testing"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "user-1"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace", input: " \t ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.input, "param")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyString)
				assert.Contains(t, err.Error(), "param")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRecordInput(t *testing.T) {
	assert.NoError(t, validateRecordInput(testInput("user-1", "Coffee", 0)))

	input := testInput("user-1", "Coffee", 4)
	input.Emotion = model.Emotion("")
	err := validateRecordInput(input)
	assert.ErrorIs(t, err, common.ErrPersistence)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}
