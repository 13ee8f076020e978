package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SiteStrategy extracts job links from one known job board. It is data
// driven: anchors are selected by CSS and optionally narrowed by href hints,
// and titles are searched in a fixed order (inner element, anchor text,
// ancestor container) before falling back to Placeholder.
type SiteStrategy struct {
	Label string
	// Hosts are base URL substrings that identify the site.
	Hosts []string
	// Anchors selects candidate links.
	Anchors string
	// HrefHints, when set, keeps only anchors whose href contains one of them.
	HrefHints []string
	// InnerTitle selects a title element inside the anchor.
	InnerTitle string
	// AnchorText uses the anchor's own text as a title.
	AnchorText bool
	// Container selects the closest ancestor card of the anchor.
	Container string
	// ContainerTitle selects a title element inside Container.
	ContainerTitle string
	Placeholder    string
}

// Name implements Strategy.
func (s SiteStrategy) Name() string { return s.Label }

// Candidates implements Strategy.
func (s SiteStrategy) Candidates(doc *goquery.Document) []Candidate {
	var out []Candidate
	doc.Find(s.Anchors).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if len(s.HrefHints) > 0 && !containsAny(href, s.HrefHints) {
			return
		}
		out = append(out, Candidate{Title: s.title(a), Href: href})
	})
	return out
}

func (s SiteStrategy) title(a *goquery.Selection) string {
	if s.InnerTitle != "" {
		if t := cleanText(a.Find(s.InnerTitle).First().Text()); t != "" {
			return t
		}
	}
	if s.AnchorText {
		if t := cleanText(a.Text()); t != "" {
			return t
		}
	}
	if s.Container != "" && s.ContainerTitle != "" {
		card := a.Closest(s.Container)
		if card.Length() > 0 {
			if t := cleanText(card.Find(s.ContainerTitle).First().Text()); t != "" {
				return t
			}
		}
	}
	return s.Placeholder
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// BuiltinSites returns the strategies for the job boards supported out of the box.
func BuiltinSites() []SiteStrategy {
	return []SiteStrategy{
		{
			Label:       "wanted",
			Hosts:       []string{"wanted.co.kr"},
			Anchors:     `a[href^="/wd/"]`,
			InnerTitle:  "strong, h4, span.job-card-title",
			Placeholder: "Unknown Title",
		},
		{
			Label:       "jobkorea",
			Hosts:       []string{"jobkorea.co.kr"},
			Anchors:     "div.post-list-info a.title, td.tplTit a",
			AnchorText:  true,
			Placeholder: "JobKorea Job Listing",
		},
		{
			Label:          "saramin",
			Hosts:          []string{"saramin.co.kr"},
			Anchors:        "a[href]",
			HrefHints:      []string{"/zf_user/jobs/relay/view", "/zf_user/jobs/view", "rec_idx="},
			AnchorText:     true,
			Container:      "div, li, tr",
			ContainerTitle: ".job_tit, .item_title, strong, h2",
			Placeholder:    "Saramin Job Listing",
		},
		{
			Label:          "greenhouse",
			Hosts:          []string{"boards.greenhouse.io", "job-boards.greenhouse.io"},
			Anchors:        "a[href]",
			HrefHints:      []string{"/jobs/"},
			InnerTitle:     "p.body--medium",
			AnchorText:     true,
			Container:      "div.opening, tr.job-post",
			ContainerTitle: "p",
			Placeholder:    "Greenhouse Job Listing",
		},
		{
			Label:       "lever",
			Hosts:       []string{"jobs.lever.co"},
			Anchors:     "a.posting-title",
			InnerTitle:  `h5, [data-qa="posting-name"]`,
			AnchorText:  true,
			Placeholder: "Lever Job Listing",
		},
	}
}
