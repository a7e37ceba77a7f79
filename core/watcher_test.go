package core

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestWatch_CallsOnChangeAfterEdit(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "views/index.html", "v1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), []string{dir}, func() {
			changed <- struct{}{}
		})
	}()

	time.Sleep(100 * time.Millisecond)
	writeTempFile(t, dir, "views/index.html", "v2")

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("expected onChange after file edit")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil error on cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 16)
	go Watch(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), []string{dir}, func() {
		changed <- struct{}{}
	})

	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		writeTempFile(t, dir, "public/site.css", "body{}")
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("expected onChange")
	}

	time.Sleep(2 * watchDebounce)
	if n := len(changed); n != 0 {
		t.Errorf("expected a single callback for a burst, got %d extra", n)
	}
}
