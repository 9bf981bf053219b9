// Package catalog holds the static source catalog: category membership,
// domain roots, explicit home URLs, the priority panel, and the search
// engines used to build dork links.
package catalog

// Category names. Dork construction treats property and reverse-phone
// sources specially, so their names are referenced by code.
const (
	CategoryPeopleSearch = "People Search"
	CategoryReversePhone = "Reverse Phone / Address"
	CategoryProperty     = "Property Records & Accessor"
	CategoryCourt        = "Court/Criminal/Gov"
	CategorySpecialized  = "Specialized / Extra"
	CategoryWorldwide    = "Worldwide"
)

// Category groups sources the way the selection UI presents them.
type Category struct {
	Name    string
	Sources []string
}

// Categories lists every known source in presentation order.
var Categories = []Category{
	{Name: CategoryPeopleSearch, Sources: []string{
		"FastPeopleSearch", "TruePeopleSearch", "TruePeopleSearch.io", "FastBackgroundCheck", "That’sThem",
		"FamilyTreeNow", "ZabaSearch", "Radaris", "NeighborReport", "Nuwber",
	}},
	{Name: CategoryReversePhone, Sources: []string{
		"Whitepages (Free Search)", "411.com", "AnyWho", "WhoCallsMe", "SpyDialer",
		"CallerName", "OKCaller", "Sync.me", "NumLookup", "ReversePhoneLookup",
	}},
	{Name: CategoryProperty, Sources: []string{
		"Zillow", "Rehold", "NeighborWho", "HomeFacts", "Melissa Address Lookup",
		"PropertyShark", "Netronline Public Records", "PublicRecords360", "AddressSearch.com", "HOMES.com",
	}},
	{Name: CategoryCourt, Sources: []string{
		"PACER (federal index)", "VINELink", "BOP Inmate Locator", "State/County Court Directory", "InmateAid",
		"State Prison Inmate Locators", "Offender Search", "Arrests.org", "Mugshots.com", "BustedMugshots",
	}},
	{Name: CategorySpecialized, Sources: []string{
		"PeekYou", "Pipl (preview)", "Social Searcher", "Username Search", "instant username search",
		"IDcrawl", "Username Pack (direct)", "Hunter.io",
		"EmailHippo", "HaveIBeenPwned", "BlackBookOnline", "DataAxle Reference", "USPhoneBook",
	}},
	{Name: CategoryWorldwide, Sources: []string{
		"SearchSystems", "GestolenObjectenRegister", "RDW-OVI", "PeopleSearch AU",
		"QKenteken", "KVK Zoeken", "Sportradar", "Weibo", "HKU DataHub", "OpenStreetMap",
	}},
}

// SourceUsernamePack fans out over many profile services and is legitimately
// slower than single-page sources; the scheduler grants it a timeout floor.
const SourceUsernamePack = "Username Pack (direct)"

// PrioritySources are always dispatched first, in this relative order.
var PrioritySources = []string{SourceUsernamePack, "FamilyTreeNow", "WhoCallsMe", "HaveIBeenPwned"}

// domains maps a source to its primary domain root used for site: dorks.
// Sources without a stable public domain are absent.
var domains = map[string]string{
	"FastPeopleSearch": "fastpeoplesearch.com", "TruePeopleSearch": "truepeoplesearch.com", "TruePeopleSearch.io": "truepeoplesearch.io",
	"FastBackgroundCheck": "fastbackgroundcheck.com", "That’sThem": "thatsthem.com", "FamilyTreeNow": "familytreenow.com",
	"ZabaSearch": "zabasearch.com", "Radaris": "radaris.com", "Nuwber": "nuwber.com",
	"Whitepages (Free Search)": "whitepages.com", "411.com": "411.com", "AnyWho": "anywho.com", "WhoCallsMe": "whocallsme.com",
	"SpyDialer": "spydialer.com", "OKCaller": "okcaller.com", "Sync.me": "sync.me", "NumLookup": "numlookup.com",
	"ReversePhoneLookup": "reversephonelookup.com",
	"Zillow":             "zillow.com", "Rehold": "rehold.com", "NeighborWho": "neighborwho.com", "HomeFacts": "homefacts.com",
	"Melissa Address Lookup": "melissa.com", "PropertyShark": "propertyshark.com", "Netronline Public Records": "netronline.com",
	"PublicRecords360": "publicrecords360.com", "AddressSearch.com": "addresssearch.com", "HOMES.com": "homes.com",
	"PACER (federal index)": "pacer.uscourts.gov", "VINELink": "vinelink.vineapps.com", "BOP Inmate Locator": "bop.gov",
	"InmateAid": "inmateaid.com", "Offender Search": "nsopw.gov", "Arrests.org": "arrests.org",
	"Mugshots.com": "mugshots.com", "BustedMugshots": "bustedmugshots.com",
	"PeekYou": "peekyou.com", "Pipl (preview)": "pipl.com", "Social Searcher": "social-searcher.com",
	"Username Search": "usersearch.org", "instant username search": "instantusername.com",
	"IDcrawl": "idcrawl.com/username-search", "Hunter.io": "hunter.io",
	"EmailHippo": "emailhippo.com", "HaveIBeenPwned": "haveibeenpwned.com", "BlackBookOnline": "blackbookonline.info",
	"DataAxle Reference": "referenceusa.com", "USPhoneBook": "usphonebook.com",
	"SearchSystems": "searchsystems.net", "GestolenObjectenRegister": "gestolenobjectenregister.nl",
	"RDW-OVI": "ovi.rdw.nl", "PeopleSearch AU": "peoplesearch.com.au",
	"QKenteken": "qenteken.nl", "KVK Zoeken": "kvk.nl", "Sportradar": "sportradar.com", "Weibo": "weibo.com",
	"HKU DataHub": "datahub.hku.hk", "OpenStreetMap": "openstreetmap.org",
}

// homeURLs overrides the derived https://<domain> home page where the useful
// landing page differs from the bare domain root.
var homeURLs = map[string]string{
	"SearchSystems":            "https://publicrecords.searchsystems.net/",
	"GestolenObjectenRegister": "https://gestolenobjectenregister.nl/",
	"RDW-OVI":                  "https://ovi.rdw.nl/",
	"PeopleSearch AU":          "https://peoplesearch.com.au/",
	"QKenteken":                "https://www.qenteken.nl/",
	"KVK Zoeken":               "https://www.kvk.nl/zoeken/",
	"Sportradar":               "https://sportradar.com/",
	"Weibo":                    "https://s.weibo.com/",
	"HKU DataHub":              "https://datahub.hku.hk/",
	"OpenStreetMap":            "https://www.openstreetmap.org/",
}

var (
	propertySources     = sourceSet(CategoryProperty)
	reversePhoneSources = sourceSet(CategoryReversePhone)
)

func sourceSet(category string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, cat := range Categories {
		if cat.Name != category {
			continue
		}
		for _, s := range cat.Sources {
			out[s] = struct{}{}
		}
	}
	return out
}

// AllSources returns every catalog source in presentation order.
func AllSources() []string {
	var out []string
	for _, cat := range Categories {
		out = append(out, cat.Sources...)
	}
	return out
}

// DomainFor returns the source's primary domain root, or "" when the source
// has none.
func DomainFor(source string) string {
	return domains[source]
}

// BaseURL resolves the source's home page: an explicit entry first, then the
// https:// form of its domain root. Empty means no home link can be built.
func BaseURL(source string) string {
	if u, ok := homeURLs[source]; ok {
		return u
	}
	if dom := domains[source]; dom != "" {
		return "https://" + dom
	}
	return ""
}

// IsProperty reports whether the source is a property-records source, which
// changes dork and dataset field ordering to address-first.
func IsProperty(source string) bool {
	_, ok := propertySources[source]
	return ok
}

// IsReversePhone reports whether the source is a reverse-phone source, which
// changes dork and dataset field ordering to phone-first.
func IsReversePhone(source string) bool {
	_, ok := reversePhoneSources[source]
	return ok
}
