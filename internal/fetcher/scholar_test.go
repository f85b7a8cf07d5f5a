package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const scholarSearchHTML = `
<html><body>
<div class="gs_ri">
  <h3 class="gs_rt">[PDF] Deep learning for tumor detection</h3>
  <div class="gs_a">J Smith, A Doe - Nature, 2023</div>
</div>
<div class="gs_ri">
  <h3 class="gs_rt"><a href="https://example.org/paper2">Radiomics in oncology</a></h3>
  <div class="gs_a">J Smith - Lancet Oncol, 2022</div>
</div>
</body></html>`

func TestGoogleScholarFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(scholarSearchHTML))
	}))
	defer srv.Close()

	f := NewGoogleScholarFetcher(srv.Client())
	f.baseURL = srv.URL

	fragments, err := f.Fetch(context.Background(), "Jane Smith", "Oncology")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("got %d fragments, want 1", len(fragments))
	}

	pubs := fragments[0].Publications
	if len(pubs) != 2 {
		t.Fatalf("got %d publications, want 2", len(pubs))
	}
	if pubs[0].Title != "Deep learning for tumor detection" {
		t.Errorf("title not cleaned: %q", pubs[0].Title)
	}
	if pubs[1].URL != "https://example.org/paper2" {
		t.Errorf("url = %q", pubs[1].URL)
	}
}

func TestCleanScholarTitle(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"[PDF] Some title", "Some title"},
		{"[HTML][PDF] Another title", "Another title"},
		{"Plain title", "Plain title"},
		{"  [BOOK] Spaced  ", "Spaced"},
	}

	for _, tc := range testCases {
		if got := cleanScholarTitle(tc.in); got != tc.want {
			t.Errorf("cleanScholarTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
