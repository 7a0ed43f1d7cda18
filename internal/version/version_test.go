package version

import "testing"

func TestString(t *testing.T) {
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })

	if got := String(); got != "dev (unknown, built unknown)" {
		t.Errorf("String() = %q", got)
	}

	Version, Commit, Date = "v1.2.0", "abc1234", "2026-01-02T03:04:05Z"
	if got := String(); got != "v1.2.0 (abc1234, built 2026-01-02T03:04:05Z)" {
		t.Errorf("String() = %q", got)
	}
}
