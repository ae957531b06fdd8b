// Package audio plays program samples through an external player binary.
// Playback is best-effort: a missing player or sample disables sound
// without affecting the derivation.
package audio

import (
	"os"
	"os/exec"
	"path/filepath"
)

// maxChannels bounds how many samples may play at once. Further Play
// calls are dropped until a channel frees up.
const maxChannels = 32

// players lists known command-line players, first found wins.
var players = [][]string{
	{"afplay"},
	{"paplay"},
	{"aplay", "-q"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
}

// Player resolves sample keys to files and plays them asynchronously.
type Player struct {
	bin     string
	args    []string
	slots   chan struct{}
	samples map[rune]string
}

// NewPlayer locates a player binary. When none exists the Player is
// disabled and every Play is a no-op.
func NewPlayer() *Player {
	p := &Player{
		slots:   make(chan struct{}, maxChannels),
		samples: make(map[rune]string),
	}
	for _, cand := range players {
		if path, err := exec.LookPath(cand[0]); err == nil {
			p.bin = path
			p.args = cand[1:]
			break
		}
	}
	return p
}

// Enabled reports whether a player binary was found.
func (p *Player) Enabled() bool { return p.bin != "" }

// LoadSamples replaces the sample table. Each path is resolved against the
// program directory first, then taken as-is relative to the working
// directory.
func (p *Player) LoadSamples(dir string, paths map[rune]string) {
	p.samples = make(map[rune]string, len(paths))
	for sym, path := range paths {
		local := filepath.Join(dir, path)
		if exists(local) {
			p.samples[sym] = local
		} else {
			p.samples[sym] = path
		}
	}
}

// Play starts the sample for a key. Unknown keys, a disabled player and an
// exhausted channel pool are all silent no-ops.
func (p *Player) Play(sym rune) {
	if p.bin == "" {
		return
	}
	path, ok := p.samples[sym]
	if !ok {
		return
	}
	select {
	case p.slots <- struct{}{}:
	default:
		return
	}
	args := append(append([]string{}, p.args...), path)
	cmd := exec.Command(p.bin, args...)
	if err := cmd.Start(); err != nil {
		<-p.slots
		return
	}
	go func() {
		cmd.Wait()
		<-p.slots
	}()
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
