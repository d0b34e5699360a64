package sift

import "testing"

func TestSummarize(t *testing.T) {
	raw := []byte("From: alice@example.test\r\n" +
		"To: bob@example.test\r\n" +
		"Message-ID: <123@example.test>\r\n" +
		"Subject: =?utf-8?q?hello_world?=\r\n" +
		"\r\n" +
		"body\r\n")

	s := Summarize(raw)
	if s.Subject != "hello world" {
		t.Errorf("expected hello world, got %q", s.Subject)
	}
	if s.MessageID != "123@example.test" {
		t.Errorf("expected 123@example.test, got %q", s.MessageID)
	}
}

func TestSummarizeGarbage(t *testing.T) {
	var tests = []struct {
		raw string
	}{
		{raw: ""},
		{raw: "not a mail header at all"},
		{raw: "\x00\x01\x02"},
	}

	for _, v := range tests {
		s := Summarize([]byte(v.raw))
		if s == nil {
			t.Fatal("summary must never be nil")
		}
	}
}
