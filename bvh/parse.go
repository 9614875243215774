package bvh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ParseError reports malformed input along with the line it was found on.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErrorf(line int, format string, args ...interface{}) error {
	return &ParseError{Line: line, Err: errors.Errorf(format, args...)}
}

type token struct {
	text string
	line int
}

type parser struct {
	tokens   []token
	pos      int
	lastLine int
	joints   []*Joint
}

// ParseFile reads and parses the BVH file at path.
func ParseFile(path string) (*File, error) {
	//nolint:gosec
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	f, err := Parse(fh)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return f, nil
}

// Parse reads a BVH document. The hierarchy text preceding the MOTION keyword is kept verbatim so
// the file can be written back with an unchanged header.
func Parse(r io.Reader) (*File, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		hierarchy []string
		tokens    []token
		lineNo    int
		motionAt  int
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == "MOTION" {
			motionAt = lineNo
			break
		}
		hierarchy = append(hierarchy, line)
		for _, field := range fields {
			tokens = append(tokens, token{field, lineNo})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if motionAt == 0 {
		return nil, parseErrorf(lineNo, "no MOTION section")
	}

	p := &parser{tokens: tokens, lastLine: motionAt}
	if err := p.hierarchy(); err != nil {
		return nil, err
	}

	f := &File{Joints: p.joints, hierarchy: hierarchy}
	if err := f.buildIndex(); err != nil {
		return nil, &ParseError{Line: motionAt, Err: err}
	}
	if err := parseMotion(scanner, lineNo, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *parser) next() (token, error) {
	if p.pos >= len(p.tokens) {
		return token{}, parseErrorf(p.lastLine, "unexpected end of hierarchy")
	}
	t := p.tokens[p.pos]
	p.pos++
	return t, nil
}

func (p *parser) expect(text string) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t.text != text {
		return parseErrorf(t.line, "expected %q, found %q", text, t.text)
	}
	return nil
}

func (p *parser) float() (float64, error) {
	t, err := p.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(t.text, 64)
	if err != nil {
		return 0, parseErrorf(t.line, "invalid number %q", t.text)
	}
	return v, nil
}

func (p *parser) vector() (r3.Vector, error) {
	var v [3]float64
	for i := range v {
		f, err := p.float()
		if err != nil {
			return r3.Vector{}, err
		}
		v[i] = f
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
}

func (p *parser) hierarchy() error {
	if err := p.expect("HIERARCHY"); err != nil {
		return err
	}
	if err := p.expect("ROOT"); err != nil {
		return err
	}
	if err := p.joint(-1); err != nil {
		return err
	}
	if p.pos < len(p.tokens) {
		t := p.tokens[p.pos]
		return parseErrorf(t.line, "unexpected %q after root joint, only one ROOT is supported", t.text)
	}
	return nil
}

func (p *parser) joint(parent int) error {
	name, err := p.next()
	if err != nil {
		return err
	}
	if name.text == "{" {
		return parseErrorf(name.line, "joint is missing a name")
	}
	if err := p.expect("{"); err != nil {
		return err
	}
	j := &Joint{Name: name.text, Parent: parent}
	idx := len(p.joints)
	p.joints = append(p.joints, j)

	for {
		t, err := p.next()
		if err != nil {
			return err
		}
		switch t.text {
		case "OFFSET":
			if j.Offset, err = p.vector(); err != nil {
				return err
			}
		case "CHANNELS":
			if err := p.channels(j); err != nil {
				return err
			}
		case "JOINT":
			if err := p.joint(idx); err != nil {
				return err
			}
		case "End":
			if err := p.endSite(j); err != nil {
				return err
			}
		case "}":
			return nil
		default:
			return parseErrorf(t.line, "unexpected %q in joint %q", t.text, j.Name)
		}
	}
}

func (p *parser) channels(j *Joint) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(t.text)
	if err != nil || n < 0 || n > 6 {
		return parseErrorf(t.line, "invalid channel count %q", t.text)
	}
	j.Channels = make([]Channel, n)
	for i := range j.Channels {
		t, err := p.next()
		if err != nil {
			return err
		}
		ch, err := ParseChannel(t.text)
		if err != nil {
			return &ParseError{Line: t.line, Err: err}
		}
		j.Channels[i] = ch
	}
	return nil
}

func (p *parser) endSite(j *Joint) error {
	for _, text := range []string{"Site", "{", "OFFSET"} {
		if err := p.expect(text); err != nil {
			return err
		}
	}
	offset, err := p.vector()
	if err != nil {
		return err
	}
	j.EndSite = &offset
	return p.expect("}")
}

// maxPreallocFrames caps the capacity reserved from the Frames: header, which is not trusted.
const maxPreallocFrames = 4096

func parseMotion(scanner *bufio.Scanner, lineNo int, f *File) error {
	frames := -1
	haveFrameTime := false
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch {
		case frames < 0:
			if len(fields) != 2 || fields[0] != "Frames:" {
				return parseErrorf(lineNo, "expected \"Frames: <count>\"")
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 {
				return parseErrorf(lineNo, "invalid frame count %q", fields[1])
			}
			frames = n
			f.Frames = make([][]float64, 0, min(n, maxPreallocFrames))
		case !haveFrameTime:
			if len(fields) != 3 || fields[0] != "Frame" || fields[1] != "Time:" {
				return parseErrorf(lineNo, "expected \"Frame Time: <seconds>\"")
			}
			ft, err := strconv.ParseFloat(fields[2], 64)
			if err != nil || ft <= 0 {
				return parseErrorf(lineNo, "invalid frame time %q", fields[2])
			}
			f.FrameTime = ft
			haveFrameTime = true
		default:
			if len(f.Frames) == frames {
				return parseErrorf(lineNo, "more frames than the declared %d", frames)
			}
			if len(fields) != f.channels {
				return parseErrorf(lineNo, "frame has %d values, hierarchy declares %d channels", len(fields), f.channels)
			}
			row := make([]float64, len(fields))
			for i, field := range fields {
				v, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return parseErrorf(lineNo, "invalid number %q", field)
				}
				row[i] = v
			}
			f.Frames = append(f.Frames, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if !haveFrameTime {
		return parseErrorf(lineNo, "incomplete MOTION header")
	}
	if len(f.Frames) != frames {
		return parseErrorf(lineNo, "found %d frames, header declares %d", len(f.Frames), frames)
	}
	return nil
}
