package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFeedParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *FeedParams)
		want   error
	}{
		{"defaults with category", func(p *FeedParams) {}, nil},
		{"no categories", func(p *FeedParams) { p.CatIDs = nil }, ErrNoCategories},
		{"negative count", func(p *FeedParams) { p.Count = -1 }, ErrNegativeCount},
		{"negative levels", func(p *FeedParams) { p.Levels = -2 }, ErrNegativeLevels},
		{"bad category mode", func(p *FeedParams) { p.CategoryFilteringType = 2 }, ErrInvalidFilterArg},
		{"bad article mode", func(p *FeedParams) { p.ArticleFilterMode = -1 }, ErrInvalidFilterArg},
		{"exclude mode", func(p *FeedParams) { p.CategoryFilteringType = CategoryFilterExclude }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultFeedParams()
			p.CatIDs = []int64{3}
			tt.modify(&p)

			if err := p.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDefaultFeedParams(t *testing.T) {
	p := DefaultFeedParams()
	if p.CategoryFilteringType != CategoryFilterInclude {
		t.Errorf("CategoryFilteringType = %d, want include", p.CategoryFilteringType)
	}
	if p.ArticleFilterMode != ArticleFilterExclude {
		t.Errorf("ArticleFilterMode = %d, want exclude", p.ArticleFilterMode)
	}
	if p.Currency != "RUR" {
		t.Errorf("Currency = %q, want RUR", p.Currency)
	}
}

func TestFeedParams_PrimaryCatID(t *testing.T) {
	p := FeedParams{CatIDs: []int64{7, 3}}
	if got := p.PrimaryCatID(); got != 7 {
		t.Errorf("PrimaryCatID() = %d, want 7", got)
	}
	if got := (&FeedParams{}).PrimaryCatID(); got != 0 {
		t.Errorf("empty PrimaryCatID() = %d, want 0", got)
	}
}

func TestArticle_Accessors(t *testing.T) {
	a := Article{
		IntroText: "",
		MetaDesc:  "meta",
		Images:    ArticleImages{ImageFulltext: "images/full.jpg"},
		Fields: map[string]FieldValue{
			FieldPrice: {Value: "1500", Note: "RUR"},
		},
	}

	if got := a.Description(); got != "meta" {
		t.Errorf("Description() = %q, want meta fallback", got)
	}
	if got := a.Image(); got != "images/full.jpg" {
		t.Errorf("Image() = %q, want fulltext fallback", got)
	}
	if got := a.Field(FieldPrice); got.Value != "1500" || got.Note != "RUR" {
		t.Errorf("Field(price) = %+v", got)
	}
	if got := a.Field(FieldSalesNotes); got != (FieldValue{}) {
		t.Errorf("Field(salesnotes) = %+v, want empty", got)
	}

	a.IntroText = "intro"
	a.Images.ImageIntro = "images/intro.jpg"
	if a.Description() != "intro" || a.Image() != "images/intro.jpg" {
		t.Errorf("intro values must win: %q %q", a.Description(), a.Image())
	}

	var empty Article
	if got := empty.Field(FieldPrice); got != (FieldValue{}) {
		t.Errorf("nil Fields: %+v", got)
	}
}

func TestCategory_IsRoot(t *testing.T) {
	tests := []struct {
		cat  Category
		want bool
	}{
		{Category{ID: 1, Level: 0, Alias: "root"}, true},
		{Category{ID: 2, Level: 1, Alias: "services"}, false},
	}
	for _, tt := range tests {
		if got := tt.cat.IsRoot(); got != tt.want {
			t.Errorf("%s: IsRoot() = %v, want %v", tt.cat.Alias, got, tt.want)
		}
	}
}

func TestSchedule_IsDue(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		s    Schedule
		want bool
	}{
		{"due", Schedule{Enabled: true, NextDueAt: &past}, true},
		{"exactly now", Schedule{Enabled: true, NextDueAt: &now}, true},
		{"future", Schedule{Enabled: true, NextDueAt: &future}, false},
		{"disabled", Schedule{Enabled: false, NextDueAt: &past}, false},
		{"never planned", Schedule{Enabled: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.IsDue(now); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSchedule_Trigger(t *testing.T) {
	cron := Schedule{CronExpr: "0 3 * * *", IntervalSec: 60}
	if !cron.IsCron() || cron.IsInterval() {
		t.Error("cron expression must take precedence over interval")
	}
	interval := Schedule{IntervalSec: 60}
	if interval.IsCron() || !interval.IsInterval() {
		t.Error("interval schedule misdetected")
	}
}

func TestSchedule_IntervalAndLocation(t *testing.T) {
	cron := Schedule{CronExpr: "@daily", IntervalSec: 60, Timezone: "Europe/Moscow"}
	if cron.Interval() != 0 {
		t.Errorf("cron schedule interval = %v, want 0", cron.Interval())
	}
	if cron.Location().String() != "Europe/Moscow" {
		t.Errorf("location = %v", cron.Location())
	}

	every := Schedule{IntervalSec: 6 * 3600}
	if every.Interval() != 6*time.Hour {
		t.Errorf("interval = %v, want 6h", every.Interval())
	}
	if every.Location() != time.UTC {
		t.Errorf("empty timezone must mean UTC, got %v", every.Location())
	}

	broken := Schedule{Timezone: "Nowhere/City"}
	if broken.Location() != time.UTC {
		t.Errorf("unknown timezone must fall back to UTC, got %v", broken.Location())
	}
}

func TestSchedule_RunKey(t *testing.T) {
	now := time.Date(2026, 3, 5, 10, 15, 0, 0, time.UTC)
	planned := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	s := Schedule{ID: uuid.MustParse("6f1c5a9e-1d0b-4c3e-9a51-0f4b8f2d7c11")}

	if got := s.DueAt(now); !got.Equal(now) {
		t.Errorf("unplanned DueAt = %v, want now", got)
	}
	s.NextDueAt = &planned
	if got := s.DueAt(now); !got.Equal(planned) {
		t.Errorf("DueAt = %v, want %v", got, planned)
	}

	want := "6f1c5a9e-1d0b-4c3e-9a51-0f4b8f2d7c11_1772704800"
	if got := s.RunKey(s.DueAt(now)); got != want {
		t.Errorf("RunKey = %q, want %q", got, want)
	}
	// Один и тот же срок в другом поясе даёт тот же ключ
	if got := s.RunKey(planned.In(time.FixedZone("MSK", 3*3600))); got != want {
		t.Errorf("RunKey depends on zone: %q", got)
	}
}

func TestSchedule_RecordRun(t *testing.T) {
	var s Schedule
	runID := uuid.New()
	next := time.Date(2026, 3, 6, 3, 0, 0, 0, time.UTC)

	s.RecordRun(runID, next)

	if s.LastRunID == nil || *s.LastRunID != runID {
		t.Errorf("LastRunID = %v", s.LastRunID)
	}
	if s.NextDueAt == nil || !s.NextDueAt.Equal(next) {
		t.Errorf("NextDueAt = %v", s.NextDueAt)
	}
	if s.LastRunAt == nil {
		t.Error("LastRunAt not set")
	}
}

func TestRun_Lifecycle(t *testing.T) {
	r := Run{Status: RunStatusPending}

	r.MarkRunning()
	if r.Status != RunStatusRunning || r.Attempt != 1 || r.StartedAt == nil {
		t.Fatalf("after MarkRunning: %+v", r)
	}
	if r.IsFinished() {
		t.Error("running run reported finished")
	}
	if !r.CanRetry(3) {
		t.Error("attempt 1 of 3 must allow retry")
	}

	r.MarkFailed("db down")
	if r.Status != RunStatusFailed || r.Error != "db down" || !r.IsFinished() {
		t.Fatalf("after MarkFailed: %+v", r)
	}

	r.MarkSucceeded(12, "/var/www/yandex/repair.feed.xml")
	if r.Status != RunStatusSucceeded || r.Error != "" || r.OffersCount != 12 {
		t.Fatalf("after MarkSucceeded: %+v", r)
	}
	if r.Duration() < 0 {
		t.Errorf("Duration() = %v", r.Duration())
	}
}

func TestRun_DurationUnfinished(t *testing.T) {
	var r Run
	if r.Duration() != 0 {
		t.Errorf("Duration() = %v, want 0", r.Duration())
	}
	r.MarkCancelled()
	if r.Status != RunStatusCancelled || r.FinishedAt == nil {
		t.Errorf("after MarkCancelled: %+v", r)
	}
}

func TestParseRunStatus(t *testing.T) {
	for _, s := range []RunStatus{RunStatusPending, RunStatusRunning, RunStatusSucceeded, RunStatusFailed, RunStatusCancelled} {
		got, ok := ParseRunStatus(string(s))
		if !ok || got != s {
			t.Errorf("ParseRunStatus(%q) = %q, %v", s, got, ok)
		}
	}
	if _, ok := ParseRunStatus("pending"); ok {
		t.Error("status parsing must be case-sensitive")
	}
}

func TestRunStatus_IsTerminal(t *testing.T) {
	terminal := map[RunStatus]bool{
		RunStatusPending:   false,
		RunStatusRunning:   false,
		RunStatusSucceeded: true,
		RunStatusFailed:    true,
		RunStatusCancelled: true,
	}
	for s, want := range terminal {
		if got := s.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, got, want)
		}
	}
}
