package seeder

import (
	"strings"
	"testing"
)

func TestRunnerSelected(t *testing.T) {
	all := Defaults()

	got, err := Runner{Seeders: all}.selected()
	if err != nil || len(got) != 2 || got[0].Name() != "job_categories" {
		t.Fatalf("expected default order, got %v err=%v", got, err)
	}

	got, err = Runner{Seeders: all, Only: []string{"jobs"}}.selected()
	if err != nil || len(got) != 1 || got[0].Name() != "jobs" {
		t.Fatalf("expected only jobs, got %v err=%v", got, err)
	}

	_, err = Runner{Seeders: all, Only: []string{"skills"}}.selected()
	if err == nil || !strings.Contains(err.Error(), "skills") {
		t.Fatalf("expected unknown seeder error, got %v", err)
	}
}
