package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkID(t *testing.T) {
	assert.Equal(t, "doc-1_chunk_0", ChunkID("doc-1", 0))
	assert.Equal(t, "safety_manual_chunk_12", ChunkID("safety_manual", 12))
}

func TestValidateDocument(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid document", func(t *testing.T) {
		doc := NewDocument("doc-1", "manual.pdf", "safety_manual", 1024, 500, now)
		assert.NoError(t, ValidateDocument(doc))
	})

	t.Run("nil document", func(t *testing.T) {
		assert.Error(t, ValidateDocument(nil))
	})

	t.Run("missing ID", func(t *testing.T) {
		doc := NewDocument("", "manual.pdf", "general", 0, 0, now)
		assert.Error(t, ValidateDocument(doc))
	})

	t.Run("missing filename", func(t *testing.T) {
		doc := NewDocument("doc-1", "", "general", 0, 0, now)
		assert.Error(t, ValidateDocument(doc))
	})
}

func TestValidateChunk(t *testing.T) {
	valid := Chunk{
		ID:         ChunkID("doc-1", 0),
		Text:       "hard hats required on site",
		Index:      0,
		WordCount:  5,
		DocumentID: "doc-1",
	}

	t.Run("valid chunk", func(t *testing.T) {
		c := valid
		assert.NoError(t, ValidateChunk(&c))
	})

	t.Run("nil chunk", func(t *testing.T) {
		assert.Error(t, ValidateChunk(nil))
	})

	t.Run("whitespace text rejected", func(t *testing.T) {
		c := valid
		c.Text = "   \t\n"
		assert.Error(t, ValidateChunk(&c))
	})

	t.Run("negative index rejected", func(t *testing.T) {
		c := valid
		c.Index = -1
		assert.Error(t, ValidateChunk(&c))
	})

	t.Run("missing document back-reference rejected", func(t *testing.T) {
		c := valid
		c.DocumentID = ""
		assert.Error(t, ValidateChunk(&c))
	})
}

func TestDomainError(t *testing.T) {
	t.Run("error without cause", func(t *testing.T) {
		err := NewDomainError(ErrCodeNotFound, "document not found")
		assert.Equal(t, "[NOT_FOUND] document not found", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("error with cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewDomainErrorWithCause(ErrCodeExtraction, "failed to extract text from source file", cause)
		require.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "EXTRACTION_ERROR")
		assert.Contains(t, err.Error(), "boom")
	})
}
