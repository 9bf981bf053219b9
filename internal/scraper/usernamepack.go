package scraper

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/osintnator/osintnator/internal/catalog"
	"github.com/osintnator/osintnator/internal/query"
	"github.com/osintnator/osintnator/internal/session"
)

// usernameService is one platform the pack checks for a profile page.
// verify is matched case-insensitively against the body when mustContain is
// set; a 200 with no match is treated as a soft 404.
type usernameService struct {
	name        string
	profileURL  func(username string) string
	verify      func(username string) string
	mustContain bool
}

// maxPositives bounds how many confirmed profiles the pack collects before
// it stops checking further platforms.
const maxPositives = 8

// lowercaseRouted lists platforms whose profile paths route case-sensitively
// in practice; usernames are lowercased before building their URLs.
var lowercaseRouted = map[string]bool{
	"SoundCloud": true, "Dev.to": true, "ProductHunt": true, "Behance": true,
	"Flickr": true, "Kaggle": true, "Keybase": true, "GitLab": true,
	"Medium": true, "Pinterest": true, "Twitch": true, "Instagram": true,
	"Twitter/X": true, "YouTube": true,
}

func staticVerify(pattern string) func(string) string {
	return func(string) string { return pattern }
}

var usernameServices = []usernameService{
	{"GitHub", func(u string) string { return "https://github.com/" + u }, staticVerify(`<title>[^<]*?github[^<]*`), true},
	{"Reddit", func(u string) string { return "https://www.reddit.com/user/" + u }, staticVerify(`/user/[^/]+`), true},
	{"TikTok", func(u string) string { return "https://www.tiktok.com/@" + u }, func(u string) string {
		return "@" + regexp.QuoteMeta(strings.ToLower(u))
	}, true},
	{"Twitch", func(u string) string { return "https://www.twitch.tv/" + u }, staticVerify(`twitch`), false},
	{"Pinterest", func(u string) string { return "https://www.pinterest.com/" + u + "/" }, staticVerify(`pinterest`), false},
	{"Steam", func(u string) string { return "https://steamcommunity.com/id/" + u }, staticVerify(`steam`), false},
	{"Steam (prof)", func(u string) string { return "https://steamcommunity.com/profiles/" + u }, staticVerify(`steam`), false},
	{"SoundCloud", func(u string) string { return "https://soundcloud.com/" + u }, staticVerify(`soundcloud`), false},
	{"Medium", func(u string) string { return "https://medium.com/@" + u }, staticVerify(`medium`), false},
	{"Dev.to", func(u string) string { return "https://dev.to/" + u }, staticVerify(`dev\.to`), false},
	{"Keybase", func(u string) string { return "https://keybase.io/" + u }, staticVerify(`keybase`), false},
	{"GitLab", func(u string) string { return "https://gitlab.com/" + u }, staticVerify(`gitlab`), false},
	{"Kaggle", func(u string) string { return "https://www.kaggle.com/" + u }, staticVerify(`kaggle`), false},
	{"Flickr", func(u string) string { return "https://www.flickr.com/people/" + u + "/" }, staticVerify(`flickr`), false},
	{"Gravatar", func(u string) string { return "https://en.gravatar.com/" + u }, staticVerify(`gravatar`), false},
	{"YouTube", func(u string) string { return "https://www.youtube.com/@" + u }, staticVerify(`youtube`), false},
	{"Behance", func(u string) string { return "https://www.behance.net/" + u }, staticVerify(`behance`), false},
	{"ProductHunt", func(u string) string { return "https://www.producthunt.com/@" + u }, staticVerify(`product hunt|producthunt`), false},
	{"HackerNews", func(u string) string { return "https://news.ycombinator.com/user?id=" + u }, staticVerify(`created|about:`), false},
	{"StackOverflow", func(u string) string { return "https://stackoverflow.com/users/" + u }, staticVerify(`profile|stack overflow`), false},
	{"Instagram", func(u string) string { return "https://www.instagram.com/" + u + "/" }, staticVerify(`instagram`), false},
	{"Twitter/X", func(u string) string { return "https://x.com/" + u }, staticVerify(`x\.com|twitter`), false},
	{"Facebook", func(u string) string { return "https://www.facebook.com/" + u }, staticVerify(`facebook`), false},
	{"LinkedIn", func(u string) string { return "https://www.linkedin.com/in/" + u + "/" }, staticVerify(`linkedin`), false},
}

// UsernamePack sweeps a fixed panel of platforms for a profile page matching
// the query's username. It produces one hit per platform (positive or
// negative) plus a leading summary hit, and stops early once enough
// profiles have been confirmed.
type UsernamePack struct {
	logger   *zap.Logger
	services []usernameService
}

// NewUsernamePack builds the panel scraper.
func NewUsernamePack(logger *zap.Logger) *UsernamePack {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsernamePack{logger: logger, services: usernameServices}
}

func (p *UsernamePack) Site() string { return catalog.SourceUsernamePack }

func (p *UsernamePack) Scrape(ctx context.Context, sess *session.Session, q query.Query) ([]query.Hit, error) {
	if q.Username == "" {
		return nil, nil
	}

	var (
		hits      []query.Hit
		positives int
		matched   []string
	)
	for _, svc := range p.services {
		if err := ctx.Err(); err != nil {
			break
		}
		hit, positive := p.checkService(ctx, sess, svc, q.Username)
		hits = append(hits, hit)
		if positive {
			positives++
			matched = append(matched, svc.name)
		}
		if positives >= maxPositives {
			break
		}
	}

	summary := query.Hit{
		Site: catalog.SourceUsernamePack,
		URL:  "#",
	}
	if positives > 0 {
		summary.Title = fmt.Sprintf("%d service(s) matched for @%s", positives, q.Username)
		summary.Snippet = collapseSnippet([]byte(strings.Join(matched, "; ")), 300)
		summary.Raw = map[string]any{query.RawExists: true, query.RawCount: positives}
	} else {
		summary.Title = fmt.Sprintf("No matches for @%s", q.Username)
		summary.Snippet = "Checked major platforms"
		summary.Raw = map[string]any{query.RawExists: false}
	}
	return append([]query.Hit{summary}, hits...), nil
}

func (p *UsernamePack) checkService(ctx context.Context, sess *session.Session, svc usernameService, username string) (query.Hit, bool) {
	u := username
	if lowercaseRouted[svc.name] {
		u = strings.ToLower(u)
	}
	profileURL := svc.profileURL(u)

	resp, err := sess.FetchExistence(ctx, profileURL)
	if err != nil {
		p.logger.Debug("username check failed",
			zap.String("service", svc.name), zap.String("url", profileURL), zap.Error(err))
		return query.Negative(svc.name, profileURL, "error", 0), false
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		body := strings.ToLower(string(resp.Body))
		if svc.mustContain {
			re, reErr := regexp.Compile("(?i)" + svc.verify(username))
			if reErr != nil || !re.MatchString(body) {
				return query.Negative(svc.name, profileURL, "page loaded but pattern not found", resp.StatusCode), false
			}
		}
		return query.Hit{
			Site:    svc.name,
			Title:   svc.name + ": found",
			Snippet: collapseSnippet([]byte(body), 220),
			URL:     profileURL,
			Raw:     map[string]any{query.RawExists: true, query.RawCode: resp.StatusCode},
		}, true
	case resp.StatusCode == http.StatusNotFound:
		return query.Negative(svc.name, profileURL, "not found", http.StatusNotFound), false
	default:
		return query.Negative(svc.name, profileURL, "request failed", resp.StatusCode), false
	}
}
