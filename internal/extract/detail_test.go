package extract

import "testing"

func TestExtractText(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name: "strips scripts and styles",
			markup: `<html><head><title>Job</title><style>body { color: red; }</style></head>
<body><script>var x = 1;</script><h1>Backend Engineer</h1>
<p>We use Go and PostgreSQL.</p></body></html>`,
			want: "Job\nBackend Engineer\nWe use Go and PostgreSQL.",
		},
		{
			name:   "splits on double spaces",
			markup: `<div>Requirements  3+ years   Go</div>`,
			want:   "Requirements\n3+ years\nGo",
		},
		{
			name:   "adjacent elements are separated",
			markup: `<ul><li>Python</li><li>Django</li></ul>`,
			want:   "Python Django",
		},
		{
			name:   "blank lines dropped",
			markup: "<div>\n\n   \n<p>Only line</p>\r\n\r\n</div>",
			want:   "Only line",
		},
		{
			name:   "empty markup",
			markup: "",
			want:   "",
		},
		{
			name:   "script only",
			markup: `<script>alert("x")</script><style>p{}</style>`,
			want:   "",
		},
		{
			name:   "malformed markup",
			markup: `<div><p>Unclosed <b>bold text`,
			want:   "Unclosed\nbold text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractText(tt.markup)
			if got != tt.want {
				t.Errorf("ExtractText()\n got  %q\n want %q", got, tt.want)
			}
		})
	}
}
