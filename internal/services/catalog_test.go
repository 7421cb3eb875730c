package services

import (
	"sync"
	"testing"
)

func TestFoldKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "Zipaquirá", want: "zipaquira"},
		{raw: "  Facatativá ", want: "facatativa"},
		{raw: "BRÓCOLI", want: "brocoli"},
		{raw: "Maíz  amarillo", want: "maiz_amarillo"},
		{raw: "", want: ""},
	}
	for _, test := range tests {
		if got := FoldKey(test.raw); got != test.want {
			t.Fatalf("FoldKey(%q) = %q, want %q", test.raw, got, test.want)
		}
	}
}

func TestFoldKeyIsSafeForConcurrentRequests(t *testing.T) {
	t.Parallel()

	inputs := map[string]string{
		"Zipaquira\u0301": "zipaquira",
		"Facatativ\u00e1": "facatativa",
		"Cajic\u00e1":     "cajica",
		"Ch\u00eda":       "chia",
	}

	var wg sync.WaitGroup
	failures := make(chan string, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				for raw, want := range inputs {
					if got := FoldKey(raw); got != want {
						select {
						case failures <- raw + " -> " + got:
						default:
						}
						return
					}
				}
				if _, ok := LookupMunicipality("zipaquirá"); !ok {
					select {
					case failures <- "lookup zipaquirá failed":
					default:
					}
					return
				}
			}
		}()
	}
	wg.Wait()
	close(failures)

	for failure := range failures {
		t.Errorf("concurrent FoldKey: %s", failure)
	}
}
