package classify

import "testing"

// TestClassifier_Match tests the permissive substring matching contract:
// case-insensitive, and a domain also matches by its bare ".com"-less name.
func TestClassifier_Match(t *testing.T) {
	c, err := New([]string{"youtube.com", "reddit.com", "news.ycombinator.com"}, 16)
	if err != nil {
		t.Fatalf("failed to create classifier: %v", err)
	}

	tests := []struct {
		name     string
		title    string
		wantSite string
		wantOK   bool
	}{
		{"full domain in title", "watch on youtube.com now", "youtube.com", true},
		{"bare name in title", "YouTube - Some Video", "youtube.com", true},
		{"case insensitive", "REDDIT - dive into anything", "reddit.com", true},
		{"non-com domain full match", "News.Ycombinator.Com: new links", "news.ycombinator.com", true},
		{"unmatched title", "Unrelated App", "", false},
		{"empty title", "", "", false},
		{"partial word is permissive", "my youtubechannel notes", "youtube.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site, ok := c.Match(tt.title)
			if site != tt.wantSite || ok != tt.wantOK {
				t.Errorf("Match(%q) = (%q, %v), want (%q, %v)",
					tt.title, site, ok, tt.wantSite, tt.wantOK)
			}
		})
	}
}

// TestClassifier_LongestMatchWins tests that overlapping configured domains
// resolve to the most specific (longest) one.
func TestClassifier_LongestMatchWins(t *testing.T) {
	c, err := New([]string{"youtube.com", "m.youtube.com"}, 0)
	if err != nil {
		t.Fatalf("failed to create classifier: %v", err)
	}

	tests := []struct {
		name     string
		title    string
		wantSite string
	}{
		{"specific domain wins", "m.youtube.com - trending", "m.youtube.com"},
		{"parent domain still matches alone", "youtube.com homepage", "youtube.com"},
		{"bare parent name", "YouTube - Some Video", "youtube.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site, ok := c.Match(tt.title)
			if !ok {
				t.Fatalf("Match(%q) = no match, want %q", tt.title, tt.wantSite)
			}
			if site != tt.wantSite {
				t.Errorf("Match(%q) = %q, want %q", tt.title, site, tt.wantSite)
			}
		})
	}
}

// TestClassifier_EqualLengthTieBreak tests that equal-length domains resolve
// lexicographically instead of by configuration order.
func TestClassifier_EqualLengthTieBreak(t *testing.T) {
	title := "zzz.com and aaa.com side by side"

	for _, domains := range [][]string{
		{"zzz.com", "aaa.com"},
		{"aaa.com", "zzz.com"},
	} {
		c, err := New(domains, 0)
		if err != nil {
			t.Fatalf("failed to create classifier: %v", err)
		}
		site, ok := c.Match(title)
		if !ok || site != "aaa.com" {
			t.Errorf("Match(%q) with domains %v = (%q, %v), want (aaa.com, true)",
				title, domains, site, ok)
		}
	}
}

// TestClassifier_CacheConsistency tests that memoized and uncached lookups
// agree, including under eviction pressure from a tiny cache.
func TestClassifier_CacheConsistency(t *testing.T) {
	cached, err := New([]string{"youtube.com", "reddit.com"}, 1)
	if err != nil {
		t.Fatalf("failed to create classifier: %v", err)
	}
	uncached, err := New([]string{"youtube.com", "reddit.com"}, 0)
	if err != nil {
		t.Fatalf("failed to create classifier: %v", err)
	}

	titles := []string{
		"YouTube - Some Video",
		"reddit: the front page",
		"YouTube - Some Video", // repeat, served from cache
		"Unrelated App",
		"reddit: the front page", // repeat after eviction
	}
	for _, title := range titles {
		gotSite, gotOK := cached.Match(title)
		wantSite, wantOK := uncached.Match(title)
		if gotSite != wantSite || gotOK != wantOK {
			t.Errorf("Match(%q) cached = (%q, %v), uncached = (%q, %v)",
				title, gotSite, gotOK, wantSite, wantOK)
		}
	}
}

// TestClassifier_Domains tests that domains are reported in match priority
// order: longest first, then lexicographic.
func TestClassifier_Domains(t *testing.T) {
	c, err := New([]string{"reddit.com", "m.youtube.com", "youtube.com"}, 0)
	if err != nil {
		t.Fatalf("failed to create classifier: %v", err)
	}
	want := []string{"m.youtube.com", "youtube.com", "reddit.com"}
	got := c.Domains()
	if len(got) != len(want) {
		t.Fatalf("Domains() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Domains()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
