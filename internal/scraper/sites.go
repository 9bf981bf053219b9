package scraper

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/osintnator/osintnator/internal/query"
	"github.com/osintnator/osintnator/internal/session"
)

// siteSpec describes a probe-driven scraper: build candidate URLs from the
// query, fetch them, and keep the ones whose pages echo a query token.
type siteSpec struct {
	site    string
	maxHits int
	probes  func(q query.Query) []string
}

func (s siteSpec) toScraper() Scraper {
	return Func{
		Name: s.site,
		Run: func(ctx context.Context, sess *session.Session, q query.Query) ([]query.Hit, error) {
			probes := s.probes(q)
			if len(probes) == 0 {
				return nil, nil
			}
			return probeTerms(ctx, sess, s.site, q, probes, s.maxHits)
		},
	}
}

func esc(s string) string { return url.QueryEscape(s) }

var siteSpecs = []siteSpec{
	{"IDcrawl", 3, func(q query.Query) []string {
		if q.Username == "" {
			return nil
		}
		u := esc(q.Username)
		return []string{
			"https://idcrawl.com/username-search/" + u,
			"https://idcrawl.com/username-search?username=" + u,
			"https://idcrawl.com/search/?q=" + u,
		}
	}},
	{"Username Search", 2, func(q query.Query) []string {
		if q.Username == "" {
			return nil
		}
		u := esc(q.Username)
		return []string{
			"https://usersearch.org/results/?username=" + u,
			"https://usersearch.org/search/" + u,
		}
	}},
	{"Social Searcher", 2, func(q query.Query) []string {
		term := strings.TrimSpace(firstNonEmpty(q.Username, q.FullName(), q.Email))
		if term == "" {
			return nil
		}
		return []string{
			"https://social-searcher.com/social-search/?q=" + esc(term),
			"https://social-searcher.com/reports?query=" + esc(term),
		}
	}},
	{"PeekYou", 2, func(q query.Query) []string {
		var probes []string
		if q.Username != "" {
			probes = append(probes, "https://www.peekyou.com/"+esc(q.Username))
		}
		if name := q.FullName(); name != "" {
			probes = append(probes, "https://www.peekyou.com/usa/"+esc(name))
		}
		return probes
	}},
	{"instant username search", 1, func(q query.Query) []string {
		if q.Username == "" {
			return nil
		}
		return []string{"https://instantusername.com/#/" + esc(q.Username)}
	}},
	{"USPhoneBook", 2, func(q query.Query) []string {
		d := query.DigitsOnly(q.Phone)
		if d == "" {
			return nil
		}
		return []string{
			"https://www.usphonebook.com/" + d,
			"https://www.usphonebook.com/search?number=" + d,
		}
	}},
	{"WhoCallsMe", 1, func(q query.Query) []string {
		d := query.DigitsOnly(q.Phone)
		if d == "" {
			return nil
		}
		return []string{"https://whocallsme.com/Phone-Number.aspx/" + d}
	}},
	{"FamilyTreeNow", 1, func(q query.Query) []string {
		if q.First == "" && q.Last == "" {
			return nil
		}
		return []string{
			"https://www.familytreenow.com/search/genealogy/results?first=" + esc(q.First) +
				"&last=" + esc(q.Last) + "&city=" + esc(q.City) + "&state=" + esc(q.State),
		}
	}},
	{"FastPeopleSearch", 2, func(q query.Query) []string {
		var probes []string
		if q.First != "" || q.Last != "" || q.City != "" || q.State != "" {
			nameSlug := strings.ReplaceAll(esc(strings.TrimSpace(q.First+" "+q.Last)), "+", "-")
			area := esc(strings.TrimSpace(firstNonEmpty(q.City, q.State)))
			probes = append(probes, "https://www.fastpeoplesearch.com/name/"+nameSlug+"/"+area)
		}
		if q.Address1 != "" {
			probes = append(probes, "https://www.fastpeoplesearch.com/address/"+esc(q.Address1))
		}
		if d := query.DigitsOnly(q.Phone); d != "" {
			probes = append(probes, "https://www.fastpeoplesearch.com/phone/"+d)
		}
		return probes
	}},
	{"TruePeopleSearch", 2, func(q query.Query) []string {
		var probes []string
		area := esc(strings.TrimSpace(firstNonEmpty(q.City, q.State, q.Zip)))
		if q.First != "" || q.Last != "" {
			probes = append(probes, "https://www.truepeoplesearch.com/results?name="+
				esc(strings.TrimSpace(q.First+" "+q.Last))+"&citystatezip="+area)
		}
		if d := query.DigitsOnly(q.Phone); d != "" {
			probes = append(probes, "https://www.truepeoplesearch.com/results?phoneno="+d)
		}
		if q.Address1 != "" {
			probes = append(probes, "https://www.truepeoplesearch.com/results?streetaddress="+
				esc(q.Address1)+"&citystatezip="+area)
		}
		return probes
	}},
	{"TruePeopleSearch.io", 2, func(q query.Query) []string {
		var probes []string
		if q.First != "" || q.Last != "" {
			probes = append(probes, "https://truepeoplesearch.io/search?name="+
				esc(strings.TrimSpace(q.First+" "+q.Last))+"&state="+esc(q.State))
		}
		if d := query.DigitsOnly(q.Phone); d != "" {
			probes = append(probes, "https://truepeoplesearch.io/phone/"+d)
		}
		return probes
	}},
	{"FastBackgroundCheck", 1, func(q query.Query) []string {
		if q.First == "" && q.Last == "" {
			return nil
		}
		return []string{
			"https://www.fastbackgroundcheck.com/people/" +
				esc(strings.TrimSpace(q.First+"-"+q.Last)) + "/" + esc(strings.ToLower(q.State)),
		}
	}},
	{"ZabaSearch", 2, func(q query.Query) []string {
		var probes []string
		if q.First != "" || q.Last != "" {
			probes = append(probes, "https://www.zabasearch.com/people/"+
				esc(strings.TrimSpace(q.First+" "+q.Last))+"/"+esc(q.State)+"/")
		}
		if d := query.DigitsOnly(q.Phone); d != "" {
			probes = append(probes, "https://www.zabasearch.com/phone/"+d+"/")
		}
		return probes
	}},
	{"Radaris", 1, func(q query.Query) []string {
		var probes []string
		if q.First != "" || q.Last != "" {
			probes = append(probes, "https://radaris.com/p/"+esc(q.First)+"/"+esc(q.Last))
		}
		if q.Username != "" {
			probes = append(probes, "https://radaris.com/p/"+esc(q.Username))
		}
		return probes
	}},
	{"That’sThem", 2, func(q query.Query) []string {
		var probes []string
		if q.Email != "" {
			probes = append(probes, "https://thatsthem.com/email/"+esc(q.Email))
		}
		if d := query.DigitsOnly(q.Phone); d != "" {
			probes = append(probes, "https://thatsthem.com/phone/"+d)
		}
		if q.Address1 != "" {
			probes = append(probes, "https://thatsthem.com/address/"+
				esc(q.Address1)+"-"+esc(q.City)+"-"+esc(q.State))
		}
		return probes
	}},
	{"EmailHippo", 1, func(q query.Query) []string {
		if q.Email == "" {
			return nil
		}
		return []string{"https://tools.emailhippo.com/EmailHippo/verify?email=" + esc(q.Email)}
	}},
	{"Hunter.io", 1, func(q query.Query) []string {
		var probes []string
		if q.Email != "" {
			probes = append(probes, "https://hunter.io/verify/"+esc(q.Email))
			if at := strings.Index(q.Email, "@"); at >= 0 && at < len(q.Email)-1 {
				probes = append(probes, "https://hunter.io/try/"+esc(q.Email[at+1:]))
			}
		}
		return probes
	}},
	{"BlackBookOnline", 1, func(q query.Query) []string {
		term := firstNonEmpty(q.Username, q.FullName(), q.Email, q.Phone, q.Address1)
		if term == "" {
			return nil
		}
		return []string{"https://www.blackbookonline.info/Search.aspx?kw=" + esc(term)}
	}},
	{"DataAxle Reference", 1, func(q query.Query) []string {
		term := firstNonEmpty(q.Username, q.FullName(), q.Email)
		if term == "" {
			return nil
		}
		return []string{"https://www.referenceusa.com/Search/QuickSearch?search=" + esc(term)}
	}},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// DefaultRegistry wires up every built-in scraper: the username panel, the
// breach API, and the probe-driven site checks. Sources without an entry
// here resolve to link synthesis in the scheduler.
func DefaultRegistry(hibpAPIKey string, logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(NewUsernamePack(logger))
	r.Register(NewHIBP(hibpAPIKey, logger))
	for _, spec := range siteSpecs {
		r.Register(spec.toScraper())
	}
	return r
}
