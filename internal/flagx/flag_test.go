package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	allowed := []string{"-c", "--config"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"separate value kept", []string{"-c", "conf.json", "-a", "localhost"}, []string{"-c", "conf.json"}},
		{"equals form kept", []string{"--config=alt.json", "-a", "localhost"}, []string{"--config=alt.json"}},
		{"order preserved", []string{"--config=first.json", "-c", "second.json", "-x", "1"}, []string{"--config=first.json", "-c", "second.json"}},
		{"unknown flags dropped", []string{"-x", "1", "--y=2", "positional"}, []string{}},
		{"trailing flag without value", []string{"-c"}, []string{"-c"}},
		{"next flag is not a value", []string{"-c", "-notvalue"}, []string{"-c"}},
		{"dash inside equals value", []string{"--config=--weird.json"}, []string{"--config=--weird.json"}},
		{"empty input", []string{}, []string{}},
		{"repeated flag preserved", []string{"-c", "one.json", "-c", "two.json"}, []string{"-c", "one.json", "-c", "two.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, allowed))
		})
	}
}

func TestFilterArgs_MultipleAllowed(t *testing.T) {
	got := FilterArgs(
		[]string{"-a", "localhost:8080", "-c", "conf.json", "--other", "x"},
		[]string{"-c", "-a"},
	)
	assert.Equal(t, []string{"-a", "localhost:8080", "-c", "conf.json"}, got)
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short flag", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/short.json"}
		assert.Equal(t, "/path/short.json", JsonConfigFlags())
	})

	t.Run("long flag", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/path/long.json"}
		assert.Equal(t, "/path/long.json", JsonConfigFlags())
	})

	t.Run("unrelated flags ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-x", "1", "-y", "2"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("last occurrence wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/1.json", "-config", "/path/2.json"}
		assert.Equal(t, "/path/2.json", JsonConfigFlags())
	})
}
