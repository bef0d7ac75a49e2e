package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionTransitions(t *testing.T) {
	s := New("")
	assert.Equal(t, Anonymous, s.Capability())
	assert.Empty(t, s.Token())

	s.Elevate("tok")
	assert.Equal(t, Elevated, s.Capability())
	assert.Equal(t, "tok", s.Token())

	s.Revoke()
	assert.Equal(t, Anonymous, s.Capability())
	assert.Empty(t, s.Token())
}

func TestSessionApplyProbe(t *testing.T) {
	s := New("restored")
	assert.Equal(t, Anonymous, s.Capability(), "restored token is not trusted before the probe")

	assert.Equal(t, Elevated, s.ApplyProbe(true))
	assert.Equal(t, "restored", s.Token())

	assert.Equal(t, Anonymous, s.ApplyProbe(false))
	assert.Empty(t, s.Token())
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "elevated", Elevated.String())
	assert.Equal(t, "unknown", Capability(7).String())
}
