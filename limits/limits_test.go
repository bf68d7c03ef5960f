package limits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBatchSize(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		maxSize int
		wantErr error
	}{
		{"empty", nil, 100, ErrBufferEmpty},
		{"within limit", make([]byte, 50), 100, nil},
		{"at exact limit", make([]byte, 100), 100, nil},
		{"over limit", make([]byte, 101), 100, ErrMessageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatchSize(tt.data, tt.maxSize)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMaxBatchBytesFor(t *testing.T) {
	assert.Equal(t, NonFragmentedMaxBatchBytes, MaxBatchBytesFor(false))
	assert.Equal(t, FragmentedMaxBatchBytes, MaxBatchBytesFor(true))
}

func TestConstantOrdering(t *testing.T) {
	assert.Greater(t, FragmentedMaxBatchBytes, NonFragmentedMaxBatchBytes)
	assert.LessOrEqual(t, MaxMessageTypes, 256)
}
