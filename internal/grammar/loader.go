package grammar

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNotFound is returned when no candidate file exists for a program name.
type ErrNotFound struct{ Name string }

func (e ErrNotFound) Error() string { return fmt.Sprintf("program %q not found", e.Name) }

// Load resolves a program name and parses it.
//
// Resolution order: name, name.gz, name/index.cfg, name/index.cfg.gz.
// Files ending in .gz are gzip-decompressed; content is UTF-8.
func Load(name string) (*Grammar, error) {
	candidates := []string{
		name,
		name + ".gz",
		filepath.Join(name, "index.cfg"),
		filepath.Join(name, "index.cfg.gz"),
	}
	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return LoadFromPath(path)
	}
	return nil, ErrNotFound{Name: name}
}

// LoadFromPath parses the program file at an exact path.
func LoadFromPath(path string) (*Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open program: %w", err)
	}
	defer f.Close()

	var rd io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("decompress program %s: %w", path, err)
		}
		defer zr.Close()
		rd = zr
	}

	g, err := Parse(rd)
	if err != nil {
		return nil, err
	}
	g.Path = path
	return g, nil
}

// Parse reads a program from r. Lines starting with '#', '^' and '=' are
// directives; everything else is rule-body content. A rule block is one or
// more consecutive header lines followed by a body extending to the next
// header or EOF; consecutive headers share the body.
func Parse(r io.Reader) (*Grammar, error) {
	g := New()

	var headers []string
	var body strings.Builder

	flush := func() {
		if body.Len() == 0 || len(headers) == 0 {
			return
		}
		rhs := strings.TrimRight(body.String(), "\n")
		for _, h := range headers {
			g.addRule(h, rhs)
		}
		headers = nil
		body.Reset()
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			if len(headers) > 0 {
				body.WriteString("\n")
			}
			continue
		}
		switch line[0] {
		case '#':
			g.directive(line)
		case '^':
			rs := []rune(line)
			if len(rs) == 1 {
				g.ClearRequested = true
				continue
			}
			s := Start{V: 'c', H: 'c', Symbol: rs[1]}
			if len(rs) > 2 {
				s.V = rs[2]
			}
			if len(rs) > 3 {
				s.H = rs[3]
			}
			g.S = append(g.S, s)
		case '=':
			flush()
			headers = append(headers, line)
		default:
			if len(headers) > 0 {
				body.WriteString(line)
				body.WriteString("\n")
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	flush()

	if len(g.S) == 0 {
		g.S = append(g.S, Start{V: 'c', H: 'c', Symbol: 's'})
	}
	g.parseTiming()
	return g, nil
}

// directive handles a '#' line: help, grid configuration, or a dictionary
// entry. Anything else is a comment.
func (g *Grammar) directive(line string) {
	rs := []rune(line)
	if len(rs) < 2 {
		return
	}
	if rs[1] == '!' {
		if g.Help == "" {
			g.Help = string(rs[2:])
		}
		return
	}
	if rs[1] != '=' || len(rs) < 3 {
		return
	}
	key := rs[2]
	value := string(rs[3:])
	if key == 'G' {
		g.parseGrid(value)
		return
	}
	g.Dict[key] = value
}

func (g *Grammar) parseGrid(value string) {
	fields := strings.Fields(value)
	if len(fields) > 0 {
		if w, err := strconv.Atoi(fields[0]); err == nil {
			g.GridW = w
		}
	}
	g.GridH = 1
	if len(fields) > 1 {
		if h, err := strconv.Atoi(fields[1]); err == nil {
			g.GridH = h
		}
	}
	if g.GridW < 1 {
		g.GridW = 1
	}
	if g.GridH < 1 {
		g.GridH = 1
	}
}

// parseTiming reads the reserved 'T' dictionary entry: "B M T" milliseconds.
func (g *Grammar) parseTiming() {
	v, ok := g.Dict['T']
	if !ok {
		return
	}
	fields := strings.Fields(v)
	vals := []*int{&g.StepB, &g.StepM, &g.StepT}
	for i, f := range fields {
		if i >= len(vals) {
			break
		}
		if n, err := strconv.Atoi(f); err == nil {
			*vals[i] = n
		}
	}
}
