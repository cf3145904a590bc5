package models

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{"", "", ErrTitleEmpty},
		{"   ", "", ErrTitleEmpty},
		{"\t\n", "", ErrTitleEmpty},
		{strings.Repeat("a", 256), "", ErrTitleTooLong},
		{strings.Repeat("a", 255), strings.Repeat("a", 255), nil},
		{"  buy milk  ", "buy milk", nil},
		{"  " + strings.Repeat("a", 255) + "  ", strings.Repeat("a", 255), nil},
		{strings.Repeat("ж", 255), strings.Repeat("ж", 255), nil},
	}
	for _, c := range cases {
		got, err := NewTitle(c.in)
		if !errors.Is(err, c.err) {
			t.Fatalf("NewTitle(%q) err = %v, want %v", c.in, err, c.err)
		}
		if string(got) != c.want {
			t.Fatalf("NewTitle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseID(t *testing.T) {
	id := NewID()
	got, err := ParseID(strings.ToUpper(id))
	if err != nil || got != id {
		t.Fatalf("ParseID canonical: %q %v", got, err)
	}
	if _, err := ParseID("does-not-exist"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("want ErrInvalidID, got %v", err)
	}
}

func TestTaskPatch_Apply(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	desc := "d"
	task := NewTask("owner", "title", &desc, created)

	done := true
	later := created.Add(time.Minute)
	if err := (TaskPatch{Completed: &done}).Apply(&task, later); err != nil {
		t.Fatal(err)
	}
	if task.Title != "title" || task.Description == nil || *task.Description != "d" {
		t.Fatalf("unsupplied fields changed: %+v", task)
	}
	if !task.Completed || !task.UpdatedAt.Equal(later) || !task.CreatedAt.Equal(created) {
		t.Fatalf("patch not applied: %+v", task)
	}

	blank := "  "
	if err := (TaskPatch{Title: &blank, Completed: new(bool)}).Apply(&task, later.Add(time.Minute)); !errors.Is(err, ErrTitleEmpty) {
		t.Fatalf("want ErrTitleEmpty, got %v", err)
	}
	if !task.Completed || !task.UpdatedAt.Equal(later) {
		t.Fatalf("failed patch must not modify task: %+v", task)
	}
}
