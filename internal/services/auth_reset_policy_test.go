package services

import (
	"strings"
	"testing"
	"time"
)

func TestBuildPasswordResetURL(t *testing.T) {
	got := BuildPasswordResetURL(" https://agro.example.com/ ", "abc")
	if got != "https://agro.example.com/reset-password/abc" {
		t.Fatalf("unexpected reset url %q", got)
	}
}

func TestIsResetTokenExpired(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	if IsResetTokenExpired(&future, now) {
		t.Fatal("expected future expiry to be live")
	}
	if !IsResetTokenExpired(&past, now) {
		t.Fatal("expected past expiry to be expired")
	}
	if !IsResetTokenExpired(&now, now) {
		t.Fatal("expected expiry equal to now to be expired")
	}
	if !IsResetTokenExpired(nil, now) {
		t.Fatal("expected missing expiry to be expired")
	}
}

func TestBuildPasswordResetEmailBody(t *testing.T) {
	body := buildPasswordResetEmailBody("juan", "http://localhost:8080/reset-password/xyz")
	if !strings.HasPrefix(body, "Hola juan,") {
		t.Fatalf("unexpected greeting in %q", body)
	}
	if !strings.Contains(body, "http://localhost:8080/reset-password/xyz") {
		t.Fatalf("expected reset link in body, got %q", body)
	}
	if !strings.Contains(body, "24 horas") {
		t.Fatalf("expected expiry notice in body, got %q", body)
	}
}
