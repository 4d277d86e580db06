package pypi

import (
	"cmp"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// pep440 matches the permissive PEP 440 version syntax.
var pep440 = regexp.MustCompile(`(?i)^v?(?:(\d+)!)?(\d+(?:\.\d+)*)` +
	`(?:[-_.]?(a|alpha|b|beta|c|rc|pre|preview)[-_.]?(\d+)?)?` +
	`(?:-(\d+)|[-_.]?(post|rev|r)[-_.]?(\d+)?)?` +
	`(?:[-_.]?(dev)[-_.]?(\d+)?)?` +
	`(?:\+[a-z0-9]+(?:[-_.][a-z0-9]+)*)?$`)

// version is a parsed PEP 440 version. Local labels are ignored.
type version struct {
	epoch   int
	release []int
	phase   int // -1 final, 0 alpha, 1 beta, 2 release candidate
	pre     int
	post    int // -1 when absent
	dev     int // -1 when absent
}

func parseVersion(s string) (version, bool) {
	m := pep440.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return version{}, false
	}
	v := version{phase: -1, post: -1, dev: -1}
	ok := true
	num := func(s string) int {
		if s == "" {
			return 0
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			ok = false
		}
		return n
	}

	v.epoch = num(m[1])
	for _, part := range strings.Split(m[2], ".") {
		v.release = append(v.release, num(part))
	}
	if m[3] != "" {
		switch strings.ToLower(m[3]) {
		case "a", "alpha":
			v.phase = 0
		case "b", "beta":
			v.phase = 1
		default:
			v.phase = 2
		}
		v.pre = num(m[4])
	}
	switch {
	case m[5] != "":
		v.post = num(m[5])
	case m[6] != "":
		v.post = num(m[7])
	}
	if m[8] != "" {
		v.dev = num(m[9])
	}
	return v, ok
}

func (v version) prerelease() bool { return v.phase >= 0 || v.dev >= 0 }

// compareVersions orders a and b the way pip does, returning -1, 0 or 1.
func compareVersions(a, b version) int {
	if c := cmp.Compare(a.epoch, b.epoch); c != 0 {
		return c
	}
	for i := range max(len(a.release), len(b.release)) {
		if c := cmp.Compare(at(a.release, i), at(b.release, i)); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.preKey(), b.preKey()); c != 0 {
		return c
	}
	if a.phase >= 0 {
		if c := cmp.Compare(a.pre, b.pre); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.post, b.post); c != 0 {
		return c
	}
	return cmp.Compare(a.devKey(), b.devKey())
}

// preKey sorts "1.0.dev0" before "1.0a1" and finals after every pre-release.
func (v version) preKey() int {
	switch {
	case v.phase >= 0:
		return v.phase
	case v.post < 0 && v.dev >= 0:
		return -1
	default:
		return 3
	}
}

func (v version) devKey() int {
	if v.dev < 0 {
		return math.MaxInt
	}
	return v.dev
}

func at(xs []int, i int) int {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

// LatestStable returns the highest release that is neither a pre-release nor
// a development release. Release keys that are not valid versions are
// skipped. ok is false when no stable release exists.
func (p *PackageInfo) LatestStable() (v string, ok bool) {
	var best version
	for s := range p.Releases {
		cur, valid := parseVersion(s)
		if !valid || cur.prerelease() {
			continue
		}
		c := compareVersions(cur, best)
		if !ok || c > 0 || (c == 0 && s < v) {
			v, best, ok = s, cur, true
		}
	}
	return v, ok
}
