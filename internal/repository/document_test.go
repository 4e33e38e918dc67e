package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikeEscaper(t *testing.T) {
	assert.Equal(t, `50\%`, likeEscaper.Replace("50%"))
	assert.Equal(t, `a\_b`, likeEscaper.Replace("a_b"))
	assert.Equal(t, `c:\\temp`, likeEscaper.Replace(`c:\temp`))
	assert.Equal(t, "plain words", likeEscaper.Replace("plain words"))
}
