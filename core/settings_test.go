package core

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadSettingsReadsDotenv(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, ".env", "ADVICE_URL=https://advice.test/advice\nNASA_APOD_URL=https://apod.test/apod?api_key=\nNASA_API_KEY=DEMO_KEY\n")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := map[string]string{}
	for _, k := range []string{SettingAdviceURL, SettingAPODURL, SettingNASAAPIKey} {
		v, err := s.Lookup(k)
		if err != nil {
			t.Fatalf("lookup %s: %v", k, err)
		}
		got[k] = v
	}

	want := map[string]string{
		SettingAdviceURL:  "https://advice.test/advice",
		SettingAPODURL:    "https://apod.test/apod?api_key=",
		SettingNASAAPIKey: "DEMO_KEY",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSettingsEnvironmentOverridesFile(t *testing.T) {
	path := writeTempFile(t, t.TempDir(), ".env", "ADVICE_URL=https://from-file.test\n")
	t.Setenv("ADVICE_URL", "https://from-env.test")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Lookup(SettingAdviceURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://from-env.test" {
		t.Errorf("expected environment to win, got %q", got)
	}
}

func TestLoadSettingsMissingFileIsNotAnError(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}

	_, err = s.Lookup("DAYVIEW_TEST_UNSET_KEY")
	if !errors.Is(err, ErrMissingSetting) {
		t.Errorf("expected ErrMissingSetting, got %v", err)
	}
}

func TestSettingsLookupOnNil(t *testing.T) {
	var s *Settings
	if _, err := s.Lookup(SettingAdviceURL); !errors.Is(err, ErrMissingSetting) {
		t.Errorf("expected ErrMissingSetting, got %v", err)
	}
}

func TestSettingsPresent(t *testing.T) {
	s := NewSettings(map[string]string{SettingAdviceURL: "https://advice.test"})

	got := s.Present(SettingAdviceURL, "DAYVIEW_TEST_UNSET_KEY")
	want := map[string]bool{SettingAdviceURL: true, "DAYVIEW_TEST_UNSET_KEY": false}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Present mismatch (-want +got):\n%s", diff)
	}
}
