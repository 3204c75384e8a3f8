package rover_nav

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	prev := Logf
	t.Cleanup(func() { Logf = prev })

	var got []string
	SetLogger(func(format string, v ...interface{}) { got = append(got, fmt.Sprintf(format, v...)) })
	Logf("stage %s", StageReturning)
	assert.Equal(t, []string{"stage RETURNING"}, got)

	SetLogger(nil)
	Logf("dropped")
	assert.Len(t, got, 1)
}
