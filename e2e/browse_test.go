// ABOUTME: E2E tests for the bestiary browser through the real binary PTY
// ABOUTME: Covers startup render, fuzzy filtering, and Ctrl+C quit

package e2e

import (
	"testing"
	"time"
)

func TestBrowse_RendersAndQuits(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	s := startBrowse(t, seedDataDir(t))
	defer s.close()

	s.expectStringTimeout(t, "osrsdex bestiary", 10*time.Second)

	// Sorted list puts Abyssal demon first, so it renders without scrolling.
	s.expectStringTimeout(t, "Abyssal demon", 5*time.Second)

	s.sendCtrl(t, 'c')
	s.waitExit(t, 5*time.Second)
}

func TestBrowse_FilterShowsDropDetail(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	s := startBrowse(t, seedDataDir(t))
	defer s.close()

	s.expectStringTimeout(t, "osrsdex bestiary", 10*time.Second)

	s.send(t, "abyssal")
	s.expectStringTimeout(t, "combat 124", 5*time.Second)
	s.expectStringTimeout(t, "1/512", 5*time.Second)

	s.sendCtrl(t, 'c')
	s.waitExit(t, 5*time.Second)
}
