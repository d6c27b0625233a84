package daylog

import (
	"testing"
	"time"
)

func TestParseBlockClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		text     string
		wantKind BlockKind
		wantDay  time.Time
		wantText string
	}{
		{
			name:     "heading",
			text:     "## Tuesday, December 31st, 2024\n",
			wantKind: KindHeading,
			wantDay:  time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "heading without trailing newline",
			text:     "## Wednesday, January 1st, 2025",
			wantKind: KindHeading,
			wantDay:  time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "bullet",
			text:     "- Fixed bug\n",
			wantKind: KindBullet,
			wantText: "Fixed bug",
		},
		{
			name:     "bullet with surrounding whitespace",
			text:     "  -   shipped release notes  \n",
			wantKind: KindBullet,
			wantText: "shipped release notes",
		},
		{
			name:     "heading marker with non-date text",
			text:     "## Notes\n",
			wantKind: KindOther,
		},
		{
			name:     "bullet mentioning a date stays a bullet",
			text:     "- met the Tuesday, December 31st, 2024 deadline\n",
			wantKind: KindBullet,
			wantText: "met the Tuesday, December 31st, 2024 deadline",
		},
		{
			name:     "title paragraph",
			text:     "Work Log\n",
			wantKind: KindOther,
		},
		{
			name:     "blank separator",
			text:     "\n",
			wantKind: KindOther,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := ParseBlock(tc.text)
			if b.Kind != tc.wantKind {
				t.Fatalf("ParseBlock(%q).Kind = %d, want %d", tc.text, b.Kind, tc.wantKind)
			}
			if tc.wantKind == KindHeading && !b.Day.Equal(tc.wantDay) {
				t.Fatalf("ParseBlock(%q).Day = %s, want %s", tc.text, b.Day, tc.wantDay)
			}
			if tc.wantKind == KindBullet && b.Text != tc.wantText {
				t.Fatalf("ParseBlock(%q).Text = %q, want %q", tc.text, b.Text, tc.wantText)
			}
		})
	}
}
