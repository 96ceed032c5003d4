package records

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calories-tracker/calories_tracker/internal/logging"
)

func sampleRecord(identifier string) Record {
	return Record{
		Identifier:    identifier,
		Name:          "Ada",
		Age:           25,
		Gender:        "Female",
		ActivityLevel: "Moderate",
		Height:        170.5,
		Weight:        62,
		Duration:      30,
		HeartRate:     105,
		BodyTemp:      40.1,
		CaloriesBurnt: 176.89,
	}
}

func newCSVService(t *testing.T) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.csv")
	repo, err := NewCSVRepository(path, logging.Discard())
	if err != nil {
		t.Fatalf("csv repo: %v", err)
	}
	return NewService(repo, logging.Discard()), path
}

func services(t *testing.T) map[string]*Service {
	t.Helper()
	csvSvc, _ := newCSVService(t)
	return map[string]*Service{
		"memory": NewService(NewMemoryRepository(), logging.Discard()),
		"csv":    csvSvc,
	}
}

func TestSaveFirstWriteWins(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := sampleRecord("a@x.com")
			second := first
			second.Name = "Someone Else"
			second.CaloriesBurnt = 999

			saved, err := svc.Save(ctx, first)
			if err != nil || !saved {
				t.Fatalf("first save: saved=%v err=%v", saved, err)
			}
			saved, err = svc.Save(ctx, second)
			if err != nil {
				t.Fatalf("second save: %v", err)
			}
			if saved {
				t.Fatalf("expected second save to be dropped")
			}

			got := svc.Load(ctx, "a@x.com")
			if len(got) != 1 {
				t.Fatalf("expected exactly one record, got %d", len(got))
			}
			if got[0] != first {
				t.Fatalf("expected first record %+v, got %+v", first, got[0])
			}
		})
	}
}

func TestLoadUnknownIdentifierIsEmpty(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			got := svc.Load(context.Background(), "nobody@x.com")
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil slice, got %#v", got)
			}
		})
	}
}

func TestRoundTripManyRecords(t *testing.T) {
	svc, _ := newCSVService(t)
	ctx := context.Background()

	const n = 25
	want := make(map[string]Record, n)
	for i := 0; i < n; i++ {
		rec := sampleRecord(fmt.Sprintf("user%d@x.com", i))
		rec.Name = fmt.Sprintf("User, \"%d\"", i)
		rec.Age = float64(20 + i)
		rec.BodyTemp = 36.6 + float64(i)/10
		rec.CaloriesBurnt = float64(i) * 1.25
		want[rec.Identifier] = rec
		if saved, err := svc.Save(ctx, rec); err != nil || !saved {
			t.Fatalf("save %d: saved=%v err=%v", i, saved, err)
		}
	}

	for id, rec := range want {
		got := svc.Load(ctx, id)
		if len(got) != 1 || got[0] != rec {
			t.Fatalf("round trip mismatch for %s: want %+v got %+v", id, rec, got)
		}
	}
}

func TestFileLayout(t *testing.T) {
	svc, path := newCSVService(t)
	if _, err := svc.Save(context.Background(), sampleRecord("a@x.com")); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "Email,Name,Age,Gender,Activity Level,Height,Weight,Duration,Heart Rate,Body Temp,Calories Burnt\n" +
		"a@x.com,Ada,25,Female,Moderate,170.5,62,30,105,40.1,176.89\n"
	if string(data) != want {
		t.Fatalf("unexpected file:\n%s", data)
	}
}

func TestCorruptRowTolerance(t *testing.T) {
	svc, path := newCSVService(t)
	lines := []string{
		strings.Join(Columns, ","),
		"a@x.com,Ada,25,Female,Moderate,170,62,30,105,40.1,100",
		"b@x.com,Bob,not-a-number,Male,Light,180,80,20,100,39.5,50",
		"c@x.com,Cy,30,Other,Active,175,70,25,110,40,120",
		"d@x.com,Di,31,Other,Active",
		"e@x.com,Ed,40,Male,Sedentary,182,90,15,95,39,60",
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ctx := context.Background()
	total := 0
	for _, id := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"} {
		total += len(svc.Load(ctx, id))
	}
	if total != 3 {
		t.Fatalf("expected 3 well-formed records, got %d", total)
	}

	// A malformed row does not reserve its identifier.
	saved, err := svc.Save(ctx, sampleRecord("b@x.com"))
	if err != nil || !saved {
		t.Fatalf("expected save over malformed row to succeed: saved=%v err=%v", saved, err)
	}
}

func TestAdvisoryEnums(t *testing.T) {
	if !KnownGender("Other") || KnownGender("other") {
		t.Fatalf("gender matching should be exact")
	}
	if !KnownActivityLevel("Very Active") || KnownActivityLevel("Extreme") {
		t.Fatalf("unexpected activity level result")
	}
}

func TestUnterminatedQuoteKeepsLaterRows(t *testing.T) {
	svc, path := newCSVService(t)
	lines := []string{
		strings.Join(Columns, ","),
		`a@x.com,"Ada,25,Female,Moderate,170,62,30,105,40.1,100`,
		"c@x.com,Cy,30,Other,Active,175,70,25,110,40,120",
		"e@x.com,Ed,40,Male,Sedentary,182,90,15,95,39,60",
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ctx := context.Background()
	for _, id := range []string{"c@x.com", "e@x.com"} {
		if got := svc.Load(ctx, id); len(got) != 1 {
			t.Fatalf("expected the record for %s after the broken line, got %+v", id, got)
		}
	}

	saved, err := svc.Save(ctx, sampleRecord("c@x.com"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved {
		t.Fatalf("existing identifier after the broken line must not get a second record")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n := strings.Count(string(data), "c@x.com"); n != 1 {
		t.Fatalf("expected one c@x.com row on disk, got %d", n)
	}
}
