package router

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var paramNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

type segment struct {
	name    string
	isParam bool
}

// Pattern is a compiled route path such as "/webtoons/[slug]".
type Pattern struct {
	raw         string
	key         string
	segments    []segment
	staticCount int
}

func Compile(raw string) (Pattern, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Pattern{}, errors.New("route pattern cannot be empty")
	}

	parts := SplitPathSegments(raw)
	keyParts := make([]string, 0, len(parts))
	segments := make([]segment, 0, len(parts))
	seenParams := make(map[string]struct{}, 2)
	staticCount := 0

	for _, part := range parts {
		name, isParam, err := parseSegment(part)
		if err != nil {
			return Pattern{}, fmt.Errorf("route pattern %q: %w", raw, err)
		}
		if !isParam {
			segments = append(segments, segment{name: part})
			keyParts = append(keyParts, part)
			staticCount++
			continue
		}
		if _, dup := seenParams[name]; dup {
			return Pattern{}, fmt.Errorf("route pattern %q: duplicate param %q", raw, name)
		}
		seenParams[name] = struct{}{}
		segments = append(segments, segment{name: name, isParam: true})
		keyParts = append(keyParts, ":")
	}

	return Pattern{
		raw:         raw,
		key:         "/" + strings.Join(keyParts, "/"),
		segments:    segments,
		staticCount: staticCount,
	}, nil
}

func MustCompile(raw string) Pattern {
	pattern, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return pattern
}

func (p Pattern) String() string {
	return p.raw
}

// Key identifies the shape of the pattern; "/a/[x]" and "/a/[y]" share a key.
func (p Pattern) Key() string {
	return p.key
}

// Match reports whether requestPath fits the pattern and returns the captured params.
// requestPath is the escaped form of the URL path; each segment is unescaped
// after splitting so an encoded "/" stays inside its segment.
func (p Pattern) Match(requestPath string) (map[string]string, bool) {
	requestSegments := SplitPathSegments(requestPath)
	if len(requestSegments) != len(p.segments) {
		return nil, false
	}

	var params map[string]string
	for idx, seg := range p.segments {
		value, err := url.PathUnescape(requestSegments[idx])
		if err != nil {
			return nil, false
		}
		if !seg.isParam {
			if seg.name != value {
				return nil, false
			}
			continue
		}
		if params == nil {
			params = make(map[string]string, 2)
		}
		params[seg.name] = value
	}

	return params, true
}

// MoreSpecific orders patterns so static segments win over wildcards.
func MoreSpecific(left Pattern, right Pattern) bool {
	if left.staticCount != right.staticCount {
		return left.staticCount > right.staticCount
	}
	if len(left.segments) != len(right.segments) {
		return len(left.segments) > len(right.segments)
	}
	return left.raw < right.raw
}

func parseSegment(part string) (string, bool, error) {
	if strings.HasPrefix(part, "[") || strings.HasSuffix(part, "]") {
		if !strings.HasPrefix(part, "[") || !strings.HasSuffix(part, "]") {
			return "", false, fmt.Errorf("invalid wildcard segment %q", part)
		}
		name := strings.TrimSpace(part[1 : len(part)-1])
		if !paramNamePattern.MatchString(name) {
			return "", false, fmt.Errorf("invalid wildcard name %q", name)
		}
		return name, true, nil
	}

	if strings.ContainsAny(part, "[]") {
		return "", false, fmt.Errorf("invalid static segment %q", part)
	}
	return "", false, nil
}

func SplitPathSegments(raw string) []string {
	cleaned := path.Clean("/" + strings.TrimSpace(raw))
	trimmed := strings.Trim(cleaned, "/")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "/")
}
