package extract

import (
	"testing"

	"github.com/jobalert/jobalert/internal/model"
)

func newTestExtractor() *Extractor {
	return NewDefaultExtractor(GenericOptions{})
}

func assertListings(t *testing.T, got []model.JobListing, want []model.JobListing) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d listings, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("listing[%d]\n got  %+v\n want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractListings_Wanted(t *testing.T) {
	markup := `<html><body><ul>
		<li><a href="/wd/1001"><div><strong>Backend Engineer</strong><span>Acme</span></div></a></li>
		<li><a href="/wd/1002"><h4>Data Engineer</h4></a></li>
		<li><a href="/wd/1003"><img src="logo.png"></a></li>
		<li><a href="/company/55">Acme Corp</a></li>
	</ul></body></html>`

	got := newTestExtractor().ExtractListings(markup, "https://www.wanted.co.kr/wdlist/518", "Wanted")
	assertListings(t, got, []model.JobListing{
		{Title: "Backend Engineer", URL: "https://www.wanted.co.kr/wd/1001", SourceName: "Wanted"},
		{Title: "Data Engineer", URL: "https://www.wanted.co.kr/wd/1002", SourceName: "Wanted"},
		{Title: "Unknown Title", URL: "https://www.wanted.co.kr/wd/1003", SourceName: "Wanted"},
	})
}

func TestExtractListings_JobKorea(t *testing.T) {
	markup := `<div class="post-list-info"><a class="title" href="/Recruit/GI_Read/111">  Go 개발자
		모집 </a></div>
		<table><tr><td class="tplTit"><a href="https://www.jobkorea.co.kr/Recruit/GI_Read/222">Python Developer</a></td></tr></table>
		<a href="/Recruit/GI_Read/333">not in a listing block</a>`

	got := newTestExtractor().ExtractListings(markup, "https://www.jobkorea.co.kr/Search/?stext=go", "JobKorea")
	assertListings(t, got, []model.JobListing{
		{Title: "Go 개발자 모집", URL: "https://www.jobkorea.co.kr/Recruit/GI_Read/111", SourceName: "JobKorea"},
		{Title: "Python Developer", URL: "https://www.jobkorea.co.kr/Recruit/GI_Read/222", SourceName: "JobKorea"},
	})
}

func TestExtractListings_SaraminTitleFallbacks(t *testing.T) {
	markup := `<div class="list">
		<div class="item_recruit">
			<h2 class="job_tit"><a href="/zf_user/jobs/relay/view?rec_idx=1">Server Developer</a></h2>
		</div>
		<div class="item_recruit">
			<a href="/zf_user/jobs/relay/view?rec_idx=2"><img src="logo.png"></a>
			<strong class="item_title">Platform Engineer</strong>
		</div>
		<table><tr><td><a href="/zf_user/jobs/view?rec_idx=3"></a></td></tr></table>
		<a href="/zf_user/company-info/view?csn=9">Company page</a>
	</div>`

	got := newTestExtractor().ExtractListings(markup, "https://www.saramin.co.kr/zf_user/search?searchword=go", "Saramin")
	assertListings(t, got, []model.JobListing{
		{Title: "Server Developer", URL: "https://www.saramin.co.kr/zf_user/jobs/relay/view?rec_idx=1", SourceName: "Saramin"},
		{Title: "Platform Engineer", URL: "https://www.saramin.co.kr/zf_user/jobs/relay/view?rec_idx=2", SourceName: "Saramin"},
		{Title: "Saramin Job Listing", URL: "https://www.saramin.co.kr/zf_user/jobs/view?rec_idx=3", SourceName: "Saramin"},
	})
}

func TestExtractListings_Greenhouse(t *testing.T) {
	markup := `<section>
		<div class="opening"><a href="/acme/jobs/4001">Site Reliability Engineer</a><span class="location">Remote</span></div>
		<div class="opening"><a href="/acme/jobs/4002"></a><p>Staff Engineer</p></div>
		<table><tr class="job-post"><td><a href="https://job-boards.greenhouse.io/acme/jobs/4003">
			<p class="body body--medium">Data Engineer</p><p class="body body__secondary">Seoul</p>
		</a></td></tr></table>
		<a href="/acme">Back to board</a>
	</section>`

	got := newTestExtractor().ExtractListings(markup, "https://boards.greenhouse.io/acme", "Acme")
	assertListings(t, got, []model.JobListing{
		{Title: "Site Reliability Engineer", URL: "https://boards.greenhouse.io/acme/jobs/4001", SourceName: "Acme"},
		{Title: "Staff Engineer", URL: "https://boards.greenhouse.io/acme/jobs/4002", SourceName: "Acme"},
		{Title: "Data Engineer", URL: "https://job-boards.greenhouse.io/acme/jobs/4003", SourceName: "Acme"},
	})
}

func TestExtractListings_Lever(t *testing.T) {
	markup := `<div class="posting">
		<a class="posting-title" href="https://jobs.lever.co/acme/abc-123">
			<h5 data-qa="posting-name">Backend Engineer</h5>
			<div class="posting-categories">Seoul · Engineering</div>
		</a>
		<a class="posting-btn-submit" href="https://jobs.lever.co/acme/abc-123/apply">Apply</a>
	</div>`

	got := newTestExtractor().ExtractListings(markup, "https://jobs.lever.co/acme", "Acme Lever")
	assertListings(t, got, []model.JobListing{
		{Title: "Backend Engineer", URL: "https://jobs.lever.co/acme/abc-123", SourceName: "Acme Lever"},
	})
}

func TestExtractListings_GenericFallback(t *testing.T) {
	markup := `<nav><a href="/">Home</a><a href="/job/">Jobs</a></nav>
		<ul>
			<li><a href="/job/42">Senior Go Engineer</a></li>
			<li><a href="https://other.example.com/Recruitment/7">Cloud Platform Lead</a></li>
			<li><a href="/about">About our company</a></li>
			<li><a href="/view/9"><i class="icon"></i></a></li>
		</ul>`

	got := newTestExtractor().ExtractListings(markup, "https://careers.example.com/list", "Example")
	assertListings(t, got, []model.JobListing{
		{Title: "Senior Go Engineer", URL: "https://careers.example.com/job/42", SourceName: "Example"},
		{Title: "Cloud Platform Lead", URL: "https://other.example.com/Recruitment/7", SourceName: "Example"},
	})
}

func TestExtractListings_GenericConfigurable(t *testing.T) {
	markup := `<a href="/positions/1">Go Dev</a><a href="/job/2">Rust Developer</a>`

	e := NewDefaultExtractor(GenericOptions{PathHints: []string{"/Positions/"}, MinTitleLength: 3})
	got := e.ExtractListings(markup, "https://example.com/", "Example")
	assertListings(t, got, []model.JobListing{
		{Title: "Go Dev", URL: "https://example.com/positions/1", SourceName: "Example"},
	})
}

func TestExtractListings_DeduplicatesFirstOccurrenceWins(t *testing.T) {
	markup := `<a href="/job/1">First Title For One</a>
		<a href="https://example.com/job/2">Second Posting</a>
		<a href="https://example.com/job/1">Duplicate Title For One</a>
		<a href="/job/2#apply">Second Posting Apply</a>`

	got := newTestExtractor().ExtractListings(markup, "https://example.com/jobs", "Example")
	assertListings(t, got, []model.JobListing{
		{Title: "First Title For One", URL: "https://example.com/job/1", SourceName: "Example"},
		{Title: "Second Posting", URL: "https://example.com/job/2", SourceName: "Example"},
		{Title: "Second Posting Apply", URL: "https://example.com/job/2#apply", SourceName: "Example"},
	})
}

func TestExtractListings_NoJobLinksIsEmpty(t *testing.T) {
	markup := `<html><body><a href="/about">About us here</a><p>Nothing to see</p></body></html>`

	got := newTestExtractor().ExtractListings(markup, "https://example.com", "Example")
	if len(got) != 0 {
		t.Fatalf("expected no listings, got %+v", got)
	}
}

func TestExtractListings_MalformedInputDegrades(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		baseURL string
	}{
		{name: "empty markup", markup: "", baseURL: "https://example.com"},
		{name: "unclosed tags", markup: `<div><a href="/job/1">Broken Job Title<div><span>`, baseURL: "https://example.com"},
		{name: "garbage", markup: "\x00\x01<<<>>>&&&;;", baseURL: "https://example.com"},
		{name: "bad base url", markup: `<a href="/job/1">Valid Job Title</a>`, baseURL: "://bad url"},
		{name: "javascript and mailto hrefs", markup: `<a href="javascript:void(0)/job/">Apply to this job</a><a href="mailto:x@example.com?/job/">Email this job</a>`, baseURL: "https://example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestExtractor().ExtractListings(tt.markup, tt.baseURL, "Example")
			for _, l := range got {
				if l.URL == "" {
					t.Errorf("listing with empty URL: %+v", l)
				}
			}
		})
	}

	got := newTestExtractor().ExtractListings(`<div><a href="/job/1">Broken Job Title<div>`, "https://example.com", "Example")
	assertListings(t, got, []model.JobListing{
		{Title: "Broken Job Title", URL: "https://example.com/job/1", SourceName: "Example"},
	})
}

func TestStrategyFor(t *testing.T) {
	e := newTestExtractor()
	tests := map[string]string{
		"https://www.wanted.co.kr/wdlist":            "wanted",
		"https://www.jobkorea.co.kr/Search":          "jobkorea",
		"https://www.saramin.co.kr/zf_user/search":   "saramin",
		"https://boards.greenhouse.io/acme":          "greenhouse",
		"https://job-boards.greenhouse.io/acme":      "greenhouse",
		"https://jobs.lever.co/acme":                 "lever",
		"https://careers.example.com/open-positions": "generic",
	}
	for baseURL, want := range tests {
		if got := e.StrategyFor(baseURL).Name(); got != want {
			t.Errorf("StrategyFor(%q) = %s, want %s", baseURL, got, want)
		}
	}
}

func TestRegister_FirstMatchWins(t *testing.T) {
	e := NewExtractor(NewGenericStrategy(GenericOptions{}))
	first := SiteStrategy{Label: "first", Anchors: "a.first"}
	second := SiteStrategy{Label: "second", Anchors: "a.second"}
	e.Register(HostContains("example.com"), first)
	e.Register(HostContains("example"), second)

	if got := e.StrategyFor("https://EXAMPLE.com/jobs").Name(); got != "first" {
		t.Errorf("StrategyFor = %s, want first", got)
	}
}
