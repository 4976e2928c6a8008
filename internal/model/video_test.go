package model

import "testing"

func TestJoinTags(t *testing.T) {
	if got := JoinTags(nil); got != nil {
		t.Errorf("JoinTags(nil) = %q, want nil", *got)
	}
	if got := JoinTags([]string{}); got != nil {
		t.Errorf("JoinTags(empty) = %q, want nil", *got)
	}
	if got := JoinTags([]string{"음악"}); got == nil || *got != "음악" {
		t.Errorf("JoinTags(single) = %v, want 음악", got)
	}
	if got := JoinTags([]string{"a", "b", "c"}); got == nil || *got != "a,b,c" {
		t.Errorf("JoinTags(multi) = %v, want a,b,c", got)
	}
}
