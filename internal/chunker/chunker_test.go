package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineSplitter(t *testing.T) {
	got := NewLineSplitter().Split("I love pizza\n\n  Pizza is delicious  \r\n\t\nBooks are educational")
	assert.Equal(t, []string{"I love pizza", "Pizza is delicious", "Books are educational"}, got)
	assert.Empty(t, NewLineSplitter().Split(" \n \n"))
}

func TestSentenceSplitter(t *testing.T) {
	s := NewSentenceSplitter(3)
	got := s.Split("I love pizza. Pizza is\ndelicious! Do you read books? Books are educational")
	assert.Equal(t, []string{
		"I love pizza.",
		"Pizza is delicious!",
		"Do you read books?",
		"Books are educational",
	}, got)
}

func TestSentenceSplitterMergesFragments(t *testing.T) {
	s := NewSentenceSplitter(3)
	assert.Equal(t, []string{"A. Short one."}, s.Split("A. Short one."))
	assert.Equal(t, []string{"Ok."}, NewSentenceSplitter(10).Split("Ok."))
	assert.Empty(t, s.Split("   "))
}

func TestNew(t *testing.T) {
	sp, err := New("lines")
	require.NoError(t, err)
	assert.IsType(t, &LineSplitter{}, sp)

	sp, err = New("sentences")
	require.NoError(t, err)
	assert.IsType(t, &SentenceSplitter{}, sp)

	_, err = New("paragraphs")
	require.Error(t, err)
}
