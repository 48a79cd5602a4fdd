package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/harvey/internal/extract"
	"github.com/nao1215/harvey/internal/fetch"
	"github.com/nao1215/harvey/internal/model"
	"github.com/nao1215/harvey/internal/probe"
)

type fakeScraper struct {
	mu      sync.Mutex
	records map[string]model.CandidateRecord
	calls   []string
}

func (f *fakeScraper) Scrape(_ context.Context, profileURL string) model.CandidateRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, profileURL)

	if r, ok := f.records[profileURL]; ok {
		return r
	}
	return model.CandidateRecord{
		Source: model.SourceLinkedInScrape,
		URL:    profileURL,
		Error:  model.ErrorTransportFailure,
	}
}

type fakePeople struct {
	records []model.CandidateRecord
	calls   int
}

func (f *fakePeople) SearchPeople(_ context.Context, _ string) []model.CandidateRecord {
	f.calls++
	return f.records
}

// failingGetter simulates a host with no network.
type failingGetter struct{}

func (failingGetter) Get(_ context.Context, rawURL string, _ http.Header) fetch.Result {
	return fetch.Result{URL: rawURL, Status: fetch.StatusFailed, Err: errors.New("network is unreachable")}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func searchHit(u string) model.CandidateRecord {
	return model.CandidateRecord{Source: model.SourceLinkedInSearch, Origin: model.OriginDuckDuckGo, URL: u}
}

func scraped(u, name, title string) model.CandidateRecord {
	return model.CandidateRecord{
		Source:   model.SourceLinkedInScrape,
		Origin:   model.OriginLinkedIn,
		URL:      u,
		FullName: name,
		Title:    title,
	}
}

func newTestEngine(scraper Scraper, people PeopleSearcher) *Engine {
	return New(scraper, people, WithLogger(quietLogger()))
}

func TestReconcileScenarios(t *testing.T) {
	t.Parallel()

	t.Run("search only", func(t *testing.T) {
		t.Parallel()

		scraper := &fakeScraper{}
		snap := newTestEngine(scraper, &fakePeople{}).Reconcile(context.Background(), Input{
			TargetName:       "Jane Doe",
			SearchCandidates: []model.CandidateRecord{searchHit("https://linkedin.com/in/janedoe")},
			ScrapedRecords:   []model.CandidateRecord{scraped("https://linkedin.com/in/janedoe", "Jane Doe", "Engineer")},
		})

		if snap.ValidationStatus != model.StatusSearchBased {
			t.Errorf("expected search based, got %q", snap.ValidationStatus)
		}
		if !slices.Equal(snap.LinkedInCandidates, []string{"https://www.linkedin.com/in/janedoe"}) {
			t.Errorf("unexpected candidates %v", snap.LinkedInCandidates)
		}
		if len(snap.LinkedInRecords) != 1 || snap.LinkedInRecords[0].FullName != "Jane Doe" || snap.LinkedInRecords[0].Title != "Engineer" {
			t.Errorf("unexpected records %+v", snap.LinkedInRecords)
		}
		if snap.GitHubProfile != nil || snap.PortfolioURL != "" {
			t.Errorf("expected no github data, got %+v / %q", snap.GitHubProfile, snap.PortfolioURL)
		}
		if len(scraper.calls) != 0 {
			t.Errorf("expected no scrape, got %v", scraper.calls)
		}
	})

	t.Run("github linkedin overrides disagreeing search", func(t *testing.T) {
		t.Parallel()

		ghLinkedIn := extract.FindLinkedInURL("Say hi: linkedin.com/in/janedoe2")
		scraper := &fakeScraper{records: map[string]model.CandidateRecord{
			"https://www.linkedin.com/in/janedoe2": scraped("https://www.linkedin.com/in/janedoe2", "Jane Doe", "Staff Engineer"),
		}}

		snap := newTestEngine(scraper, &fakePeople{}).Reconcile(context.Background(), Input{
			TargetName:       "Jane Doe",
			SearchCandidates: []model.CandidateRecord{searchHit("https://linkedin.com/in/janedoe")},
			ScrapedRecords:   []model.CandidateRecord{scraped("https://linkedin.com/in/janedoe", "Jane Doe", "Engineer")},
			GitHub:           &model.GitHubProfile{Username: "janedoe", LinkedInFromBio: ghLinkedIn},
		})

		if !slices.Equal(snap.LinkedInCandidates, []string{"https://www.linkedin.com/in/janedoe2"}) {
			t.Errorf("unexpected candidates %v", snap.LinkedInCandidates)
		}
		if snap.ValidationStatus != model.StatusGitHubValidated {
			t.Errorf("expected github validated, got %q", snap.ValidationStatus)
		}
		if len(snap.LinkedInRecords) != 1 || snap.LinkedInRecords[0].Title != "Staff Engineer" {
			t.Errorf("expected only the github-derived record, got %+v", snap.LinkedInRecords)
		}
	})

	t.Run("every source down", func(t *testing.T) {
		t.Parallel()

		getter := failingGetter{}
		searcher := probe.NewSearcher(getter, probe.WithSearchLogger(quietLogger()))
		scraper := probe.NewLinkedInScraper(getter, quietLogger())
		github := probe.NewGitHubClient(getter, probe.WithGitHubLogger(quietLogger()))

		ctx := context.Background()
		candidates, _ := searcher.LinkedInFootprints(ctx, "Jane Doe")
		_, profile, _ := github.Lookup(ctx, "Jane Doe", "")

		snap := newTestEngine(scraper, searcher).Reconcile(ctx, Input{
			TargetName:       "Jane Doe",
			SearchCandidates: candidates,
			GitHub:           profile,
		})

		if snap == nil {
			t.Fatal("expected a snapshot")
		}
		if len(snap.LinkedInCandidates) != 0 || len(snap.LinkedInRecords) != 0 {
			t.Errorf("expected empty linkedin data, got %v / %+v", snap.LinkedInCandidates, snap.LinkedInRecords)
		}
		if snap.GitHubProfile != nil || snap.PortfolioURL != "" {
			t.Errorf("expected no github data, got %+v / %q", snap.GitHubProfile, snap.PortfolioURL)
		}
		if snap.ValidationStatus != model.StatusSearchBased {
			t.Errorf("expected search based, got %q", snap.ValidationStatus)
		}
	})
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	in := Input{
		TargetName: "Jane Doe",
		SearchCandidates: []model.CandidateRecord{
			searchHit("https://www.linkedin.com/in/janedoe/"),
			searchHit("https://www.linkedin.com/in/jdoe"),
		},
		ScrapedRecords: []model.CandidateRecord{
			scraped("https://www.linkedin.com/in/janedoe/", "Jane Doe", "Engineer"),
		},
		GitHub: &model.GitHubProfile{
			Username:        "janedoe",
			Bio:             "Writing at https://blog.janedoe.dev",
			LinkedInFromBio: "https://www.linkedin.com/in/other",
		},
	}
	scraper := &fakeScraper{records: map[string]model.CandidateRecord{
		"https://www.linkedin.com/in/other": {Source: model.SourceLinkedInScrape, URL: "https://www.linkedin.com/in/other", Error: model.ErrorLoginRequired},
	}}
	engine := newTestEngine(scraper, &fakePeople{})

	first, err := json.Marshal(engine.Reconcile(context.Background(), in))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(engine.Reconcile(context.Background(), in))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("snapshots differ:\n%s\n%s", first, second)
	}
}

func TestReconcileDeduplicatesCandidates(t *testing.T) {
	t.Parallel()

	in := Input{
		TargetName: "Jane Doe",
		SearchCandidates: []model.CandidateRecord{
			searchHit("https://www.linkedin.com/in/janedoe/"),
			searchHit("https://www.linkedin.com/in/jdoe"),
			searchHit("https://www.linkedin.com/in/janedoe?trk=public_profile"),
			searchHit("https://WWW.LinkedIn.com/in/jdoe#about"),
			searchHit("https://www.linkedin.com/in/jane-d"),
		},
		ScrapedRecords: []model.CandidateRecord{
			scraped("https://www.linkedin.com/in/jdoe", "J. Doe", ""),
			scraped("https://www.linkedin.com/in/janedoe", "Jane Doe", ""),
			scraped("https://www.linkedin.com/in/janedoe/", "Duplicate", ""),
			scraped("https://www.linkedin.com/in/unrelated", "Someone", ""),
		},
	}
	original := slices.Clone(in.SearchCandidates)

	snap := newTestEngine(&fakeScraper{}, &fakePeople{}).Reconcile(context.Background(), in)

	want := []string{
		"https://www.linkedin.com/in/janedoe",
		"https://www.linkedin.com/in/jdoe",
		"https://www.linkedin.com/in/jane-d",
	}
	if !slices.Equal(snap.LinkedInCandidates, want) {
		t.Errorf("candidates = %v, want %v", snap.LinkedInCandidates, want)
	}

	names := make([]string, 0, len(snap.LinkedInRecords))
	for _, r := range snap.LinkedInRecords {
		names = append(names, r.FullName)
	}
	if !slices.Equal(names, []string{"Jane Doe", "J. Doe"}) {
		t.Errorf("records are not aligned with candidates: %v", names)
	}

	if !slices.Equal(in.SearchCandidates, original) {
		t.Error("input candidates were modified")
	}
}

func TestReconcileValidation(t *testing.T) {
	t.Parallel()

	search := []model.CandidateRecord{
		searchHit("https://www.linkedin.com/in/jdoe"),
		searchHit("https://www.linkedin.com/in/janedoe"),
	}

	t.Run("agreeing github link keeps candidates", func(t *testing.T) {
		t.Parallel()

		scraper := &fakeScraper{}
		snap := newTestEngine(scraper, &fakePeople{}).Reconcile(context.Background(), Input{
			TargetName:       "Jane Doe",
			SearchCandidates: search,
			GitHub:           &model.GitHubProfile{LinkedInFromBio: "https://www.linkedin.com/in/janedoe/"},
		})

		if snap.ValidationStatus != model.StatusGitHubValidated {
			t.Errorf("expected github validated, got %q", snap.ValidationStatus)
		}
		if !slices.Equal(snap.LinkedInCandidates, []string{"https://www.linkedin.com/in/jdoe", "https://www.linkedin.com/in/janedoe"}) {
			t.Errorf("validation changed the candidate list: %v", snap.LinkedInCandidates)
		}
		if len(scraper.calls) != 0 {
			t.Errorf("expected no re-fetch, got %v", scraper.calls)
		}
	})

	t.Run("agreement across linkedin host spellings", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			candidate string
			bio       string
		}{
			{name: "apex host", candidate: "https://linkedin.com/in/janedoe", bio: "Find me at linkedin.com/in/janedoe"},
			{name: "country subdomain", candidate: "https://uk.linkedin.com/in/janedoe/", bio: "https://www.linkedin.com/in/janedoe"},
			{name: "plain http", candidate: "http://www.linkedin.com/in/janedoe", bio: "HTTPS://LinkedIn.com/in/janedoe?trk=bio"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				scraper := &fakeScraper{}
				snap := newTestEngine(scraper, &fakePeople{}).Reconcile(context.Background(), Input{
					TargetName:       "Jane Doe",
					SearchCandidates: []model.CandidateRecord{searchHit(tt.candidate)},
					GitHub:           &model.GitHubProfile{LinkedInFromBio: extract.FindLinkedInURL(tt.bio)},
				})

				if snap.ValidationStatus != model.StatusGitHubValidated {
					t.Errorf("expected github validated, got %q", snap.ValidationStatus)
				}
				if !slices.Equal(snap.LinkedInCandidates, []string{"https://www.linkedin.com/in/janedoe"}) {
					t.Errorf("unexpected candidates %v", snap.LinkedInCandidates)
				}
				if len(scraper.calls) != 0 {
					t.Errorf("expected no re-fetch, got %v", scraper.calls)
				}
			})
		}
	})

	t.Run("unresolvable github link keeps search result", func(t *testing.T) {
		t.Parallel()

		scraper := &fakeScraper{records: map[string]model.CandidateRecord{
			"https://www.linkedin.com/in/janedoe2": {Source: model.SourceLinkedInScrape, URL: "https://www.linkedin.com/in/janedoe2", Error: model.ErrorLoginRequired},
		}}
		snap := newTestEngine(scraper, &fakePeople{}).Reconcile(context.Background(), Input{
			TargetName:       "Jane Doe",
			SearchCandidates: search,
			GitHub:           &model.GitHubProfile{LinkedInFromBio: "https://www.linkedin.com/in/janedoe2"},
		})

		if snap.ValidationStatus != model.StatusSearchBased {
			t.Errorf("expected search based, got %q", snap.ValidationStatus)
		}
		if len(snap.LinkedInCandidates) != 2 {
			t.Errorf("expected search candidates to be kept, got %v", snap.LinkedInCandidates)
		}
		if !slices.Equal(scraper.calls, []string{"https://www.linkedin.com/in/janedoe2"}) {
			t.Errorf("expected one scrape of the github link, got %v", scraper.calls)
		}
		if !containsNote(snap.Notes, "could not be validated") {
			t.Errorf("expected a diagnostic note, got %v", snap.Notes)
		}
	})

	t.Run("override with empty search", func(t *testing.T) {
		t.Parallel()

		scraper := &fakeScraper{records: map[string]model.CandidateRecord{
			"https://www.linkedin.com/in/janedoe": scraped("https://www.linkedin.com/in/janedoe", "Jane Doe", ""),
		}}
		people := &fakePeople{}
		snap := newTestEngine(scraper, people).Reconcile(context.Background(), Input{
			TargetName: "Jane Doe",
			GitHub:     &model.GitHubProfile{LinkedInFromBio: "www.linkedin.com/in/janedoe/"},
		})

		if !slices.Equal(snap.LinkedInCandidates, []string{"https://www.linkedin.com/in/janedoe"}) {
			t.Errorf("unexpected candidates %v", snap.LinkedInCandidates)
		}
		if !snap.IsValidated() {
			t.Error("expected github validated")
		}
		if people.calls != 0 {
			t.Error("expected no people search once a candidate exists")
		}
	})

	t.Run("no scraper", func(t *testing.T) {
		t.Parallel()

		snap := newTestEngine(nil, nil).Reconcile(context.Background(), Input{
			TargetName:       "Jane Doe",
			SearchCandidates: search,
			GitHub:           &model.GitHubProfile{LinkedInFromBio: "https://www.linkedin.com/in/janedoe2"},
		})
		if snap.ValidationStatus != model.StatusSearchBased || len(snap.LinkedInCandidates) != 2 {
			t.Errorf("unexpected snapshot %+v", snap)
		}
	})
}

func TestReconcileFallback(t *testing.T) {
	t.Parallel()

	t.Run("people search fills empty candidates", func(t *testing.T) {
		t.Parallel()

		people := &fakePeople{records: []model.CandidateRecord{
			{Source: model.SourcePeopleSearchFallback, Origin: model.OriginBing, URL: "https://janedoe.dev/", Error: model.ErrorLinkedInNotFound},
			{Source: model.SourcePeopleSearchFallback, Origin: model.OriginBing, URL: "https://janedoe.dev", Error: model.ErrorLinkedInNotFound},
			{Source: model.SourcePeopleSearchFallback, Origin: model.OriginBing, URL: "https://github.com/janedoe", Error: model.ErrorLinkedInNotFound},
		}}

		snap := newTestEngine(&fakeScraper{}, people).Reconcile(context.Background(), Input{TargetName: "Jane Doe"})

		if !slices.Equal(snap.LinkedInCandidates, []string{"https://janedoe.dev", "https://github.com/janedoe"}) {
			t.Errorf("unexpected candidates %v", snap.LinkedInCandidates)
		}
		if len(snap.LinkedInRecords) != 2 {
			t.Fatalf("expected 2 records, got %+v", snap.LinkedInRecords)
		}
		for _, r := range snap.LinkedInRecords {
			if r.Error != model.ErrorLinkedInNotFound {
				t.Errorf("fallback record not tagged: %+v", r)
			}
		}
		if snap.HasLinkedIn() {
			t.Error("fallback links must not count as linkedin profiles")
		}
		if snap.ValidationStatus != model.StatusSearchBased {
			t.Errorf("expected search based, got %q", snap.ValidationStatus)
		}
	})

	t.Run("not run when search found candidates", func(t *testing.T) {
		t.Parallel()

		people := &fakePeople{}
		newTestEngine(&fakeScraper{}, people).Reconcile(context.Background(), Input{
			TargetName:       "Jane Doe",
			SearchCandidates: []model.CandidateRecord{searchHit("https://www.linkedin.com/in/janedoe")},
		})
		if people.calls != 0 {
			t.Errorf("expected no people search, got %d", people.calls)
		}
	})

	t.Run("empty people search leaves a note", func(t *testing.T) {
		t.Parallel()

		snap := newTestEngine(&fakeScraper{}, &fakePeople{}).Reconcile(context.Background(), Input{TargetName: "Jane Doe"})
		if len(snap.LinkedInCandidates) != 0 {
			t.Errorf("expected no candidates, got %v", snap.LinkedInCandidates)
		}
		if !containsNote(snap.Notes, string(model.ErrorLinkedInNotFound)) {
			t.Errorf("expected linkedin_not_found note, got %v", snap.Notes)
		}
	})
}

func TestReconcilePortfolio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		github  *model.GitHubProfile
		records []model.CandidateRecord
		want    string
	}{
		{
			name: "blog wins over bio url",
			github: &model.GitHubProfile{
				Blog: "https://janedoe.dev",
				Bio:  "Projects at https://projects.example.org",
			},
			want: "https://janedoe.dev",
		},
		{
			name:   "scheme-less blog is not a url",
			github: &model.GitHubProfile{Blog: "janedoe.dev", Bio: "Projects at https://projects.example.org."},
			want:   "https://projects.example.org",
		},
		{
			name:   "linkedin urls are skipped",
			github: &model.GitHubProfile{Bio: "https://www.linkedin.com/in/janedoe, https://jane.design;"},
			want:   "https://jane.design",
		},
		{
			name: "record about text",
			records: []model.CandidateRecord{
				scraped("https://www.linkedin.com/in/janedoe", "Jane Doe", "Engineer"),
				{URL: "https://www.linkedin.com/in/jdoe", AboutText: "Portfolio: https://jdoe.art, hire me"},
			},
			want: "https://jdoe.art",
		},
		{
			name:   "nothing found",
			github: &model.GitHubProfile{Bio: "Just code."},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resolvePortfolio(tt.github, tt.records); got != tt.want {
				t.Errorf("resolvePortfolio() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInputFrom(t *testing.T) {
	t.Parallel()

	inv := model.NewInvestigation("Jane Doe")
	inv.SearchCandidates = append(inv.SearchCandidates, searchHit("https://www.linkedin.com/in/janedoe"))
	inv.GitHub = &model.GitHubProfile{Username: "janedoe"}

	in := InputFrom(inv)
	if in.TargetName != "Jane Doe" || len(in.SearchCandidates) != 1 || in.GitHub == nil {
		t.Errorf("unexpected input %+v", in)
	}
}

func containsNote(notes []string, fragment string) bool {
	for _, n := range notes {
		if strings.Contains(n, fragment) {
			return true
		}
	}
	return false
}
