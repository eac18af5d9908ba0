package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrDownload", ErrDownload},
		{"ErrNoDocuments", ErrNoDocuments},
		{"ErrEmbedding", ErrEmbedding},
		{"ErrGeneration", ErrGeneration},
		{"ErrIndexNotReady", ErrIndexNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Distinct(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidInput, ErrUnsupportedType, ErrConfiguration,
		ErrDownload, ErrNoDocuments, ErrEmbedding, ErrGeneration, ErrIndexNotReady,
	}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestErrors_Wrapped(t *testing.T) {
	err := fmt.Errorf("%w: report.pdf: status 500", ErrDownload)

	assert.True(t, errors.Is(err, ErrDownload))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "download failed: report.pdf: status 500", err.Error())
}

func TestIsSupportedDocument(t *testing.T) {
	assert.True(t, IsSupportedDocument("paper.pdf"))
	assert.True(t, IsSupportedDocument("dir/Handbook.DOCX"))
	assert.True(t, IsSupportedDocument("notes.txt"))
	assert.False(t, IsSupportedDocument("image.png"))
	assert.False(t, IsSupportedDocument("README"))
}
