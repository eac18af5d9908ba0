package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("enter", km.Send))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("esc", km.Quit))
	assert.True(t, Matches("pgup", km.ScrollUp))
	assert.True(t, Matches("pgdown", km.ScrollDown))
	assert.True(t, Matches("ctrl+s", km.ToggleSources))
	assert.True(t, Matches("ctrl+l", km.Clear))
}

func TestDefaultKeyMap_LeavesLettersToInput(t *testing.T) {
	km := DefaultKeyMap()
	bindings := []struct {
		name string
		keys []string
	}{
		{"quit", km.Quit.Keys()},
		{"send", km.Send.Keys()},
		{"scroll up", km.ScrollUp.Keys()},
		{"scroll down", km.ScrollDown.Keys()},
		{"sources", km.ToggleSources.Keys()},
		{"clear", km.Clear.Keys()},
	}

	for _, b := range bindings {
		for _, k := range b.keys {
			assert.Greater(t, len(k), 1, "%s is bound to the printable key %q", b.name, k)
		}
	}
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.False(t, Matches("q", km.Quit))
	assert.False(t, Matches("", km.Send))
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()
	help := km.ShortHelp()

	assert.Len(t, help, 4)
	assert.Equal(t, "ask", help[0].Help().Desc)
}
