package urlutil

import (
	"testing"

	"github.com/law-makers/rostercrawl/pkg/models"
)

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://allskaters.info/skaters/rus/",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestResolveProfileLinks(t *testing.T) {
	records := []models.Record{
		{ProfileURL: "/skaters/rus/00001"},
		{ProfileURL: "https://other.example/p/2"},
		{ProfileURL: "00003"},
	}
	ResolveProfileLinks("https://allskaters.info/skaters/rus/", records)

	want := []string{
		"https://allskaters.info/skaters/rus/00001",
		"https://other.example/p/2",
		"https://allskaters.info/skaters/rus/00003",
	}
	for i, w := range want {
		if records[i].ProfileURL != w {
			t.Errorf("record %d: expected %s, got %s", i, w, records[i].ProfileURL)
		}
	}
}
