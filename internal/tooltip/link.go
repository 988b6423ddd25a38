package tooltip

import (
	"regexp"
	"strconv"
)

// DefaultHost is the code host whose pull request links get tooltips.
const DefaultHost = "github.com"

// PullRequestRef identifies a pull request by its URL components.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

// LinkMatcher recognises pull request URLs on a single host.
type LinkMatcher struct {
	host string
	re   *regexp.Regexp
}

func NewLinkMatcher(host string) *LinkMatcher {
	if host == "" {
		host = DefaultHost
	}
	return &LinkMatcher{
		host: host,
		re: regexp.MustCompile(`^https://` + regexp.QuoteMeta(host) +
			`/([A-Za-z0-9_.\-]+)/([A-Za-z0-9_.\-]+)/pull/([0-9]+)/?$`),
	}
}

func (m *LinkMatcher) Host() string { return m.host }

// Matches reports whether url has the shape https://<host>/<owner>/<repo>/pull/<n>.
func (m *LinkMatcher) Matches(url string) bool {
	return m.re.MatchString(url)
}

// Parse extracts owner, repo and number from a matching URL.
func (m *LinkMatcher) Parse(url string) (PullRequestRef, bool) {
	match := m.re.FindStringSubmatch(url)
	if match == nil {
		return PullRequestRef{}, false
	}
	n, err := strconv.Atoi(match[3])
	if err != nil {
		return PullRequestRef{}, false
	}
	return PullRequestRef{Owner: match[1], Repo: match[2], Number: n}, true
}
