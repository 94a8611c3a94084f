package types

import (
	"testing"
)

func TestValidEventType(t *testing.T) {
	for _, v := range []string{EventBoardCreated, EventEvidenceSubmitted, EventProjectCommentDeleted} {
		if !ValidEventType(v) {
			t.Fatalf("ValidEventType(%q) = false", v)
		}
	}
	for _, v := range []string{"", "board_renamed", "BOARD_CREATED", "drop table"} {
		if ValidEventType(v) {
			t.Fatalf("ValidEventType(%q) = true, want rejection", v)
		}
	}
}

func TestValidObjectType(t *testing.T) {
	for _, v := range []string{ObjectBoard, ObjectEvidence, ObjectFirm} {
		if !ValidObjectType(v) {
			t.Fatalf("ValidObjectType(%q) = false", v)
		}
	}
	if ValidObjectType("user") || ValidObjectType("") {
		t.Fatal("ValidObjectType accepted out-of-set value")
	}
}

func TestProviderFromURL(t *testing.T) {
	cases := []struct {
		url      string
		provider string
		ok       bool
	}{
		{"https://www.youtube.com/watch?v=abc", ProviderYouTube, true},
		{"https://youtu.be/abc", ProviderYouTube, true},
		{"https://vimeo.com/12345", ProviderVimeo, true},
		{"https://player.vimeo.com/video/1", ProviderVimeo, true},
		{"https://www.loom.com/share/xyz", ProviderLoom, true},
		{"https://example.com/video", "", false},
		{"https://youtube.com.evil.com/x", "", false},
		{"not a url at all ://", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		p, ok := ProviderFromURL(c.url)
		if ok != c.ok || p != c.provider {
			t.Fatalf("ProviderFromURL(%q) = (%q, %v), want (%q, %v)", c.url, p, ok, c.provider, c.ok)
		}
	}
}

func TestFirmMemberIsActive(t *testing.T) {
	now := nowPtr()
	m := &FirmMember{Status: FirmMemberStatusActive}
	if !m.IsActive() {
		t.Fatal("active membership reported inactive")
	}
	m.LeftAt = now
	if m.IsActive() {
		t.Fatal("left membership reported active")
	}
	m = &FirmMember{Status: FirmMemberStatusRemoved}
	if m.IsActive() {
		t.Fatal("removed membership reported active")
	}
	var nilMember *FirmMember
	if nilMember.IsActive() {
		t.Fatal("nil membership reported active")
	}
}

func TestStepVideoSource(t *testing.T) {
	sup := newUUID()
	op := newUUID()
	if got := (&StepVideoSubmission{SupplierID: &sup}).Source(); got != VideoSourceSupplier {
		t.Fatalf("Source() = %q, want supplier", got)
	}
	if got := (&StepVideoSubmission{OperatorID: &op}).Source(); got != VideoSourceOperator {
		t.Fatalf("Source() = %q, want operator", got)
	}
	if got := (&StepVideoSubmission{}).Source(); got != "" {
		t.Fatalf("Source() = %q, want empty", got)
	}
}
