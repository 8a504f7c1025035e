package notify

import (
	"testing"

	"github.com/brandbrief/brandbrief/internal/config"
)

func TestNewSMTPNotifierRequiresAddresses(t *testing.T) {
	_, err := NewSMTPNotifier(config.Email{PasswordEnv: "BRANDBRIEF_TEST_PW"})
	if err == nil {
		t.Error("expected error when sender/receiver missing")
	}
}

func TestNewSMTPNotifierRequiresPassword(t *testing.T) {
	t.Setenv("BRANDBRIEF_TEST_PW", "")
	_, err := NewSMTPNotifier(config.Email{
		Sender:      "reports@example.com",
		Receiver:    "team@example.com",
		PasswordEnv: "BRANDBRIEF_TEST_PW",
	})
	if err == nil {
		t.Error("expected error when password env is empty")
	}
}

func TestNewSMTPNotifier(t *testing.T) {
	t.Setenv("BRANDBRIEF_TEST_PW", "hunter2")
	n, err := NewSMTPNotifier(config.Email{
		Sender:      "reports@example.com",
		Receiver:    "team@example.com",
		PasswordEnv: "BRANDBRIEF_TEST_PW",
		SMTPHost:    "smtp.example.com",
		SMTPPort:    587,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.password != "hunter2" {
		t.Error("password not read from environment")
	}
}
