package audio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSamplesPrefersProgramDir(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "pop.wav")
	if err := os.WriteFile(local, []byte("x"), 0644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	p := &Player{slots: make(chan struct{}, maxChannels)}
	p.LoadSamples(dir, map[rune]string{
		'a': "pop.wav",
		'b': "elsewhere/ding.wav",
	})

	if got := p.samples['a']; got != local {
		t.Errorf("Expected program-relative path, got %q", got)
	}
	if got := p.samples['b']; got != "elsewhere/ding.wav" {
		t.Errorf("Expected fallback to the raw path, got %q", got)
	}
}

func TestDisabledPlayerIsNoOp(t *testing.T) {
	p := &Player{slots: make(chan struct{}, maxChannels)}
	p.LoadSamples(".", map[rune]string{'a': "pop.wav"})

	// No player binary: must not panic or block.
	p.Play('a')
	p.Play('z')
}
