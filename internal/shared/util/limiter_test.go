package util

import (
	"testing"
	"time"
)

func TestCooldownAdmitsOneEventPerInterval(t *testing.T) {
	l := NewCooldown(time.Hour)
	if !l.Allow() {
		t.Fatal("first event must pass")
	}
	if l.Allow() {
		t.Error("second event inside the interval must be dropped")
	}
}

func TestCooldownRefills(t *testing.T) {
	l := NewCooldown(10 * time.Millisecond)
	if !l.Allow() {
		t.Fatal("first event must pass")
	}
	time.Sleep(25 * time.Millisecond)
	if !l.Allow() {
		t.Error("event after the interval must pass")
	}
}

func TestCooldownZeroInterval(t *testing.T) {
	l := NewCooldown(0)
	if !l.Allow() {
		t.Error("degenerate interval still admits events")
	}
}
