package syncer

import "testing"

func TestCleanContent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "plain prose untouched",
			in:   "Your meeting is booked for 9am.",
			want: "Your meeting is booked for 9am.",
		},
		{
			name: "json fence removed, prose kept",
			in:   "```json\n{\"title\": \"standup\"}\n```\nYour meeting is booked.",
			want: "Your meeting is booked.",
		},
		{
			name: "fence in the middle",
			in:   "Done.\n```json\n{\"a\":1}\n```\nAnything else?",
			want: "Done.\n\nAnything else?",
		},
		{
			name: "pseudo call removed",
			in:   `I'll record that: register_operations({"operations": []}) and we're set.`,
			want: "I'll record that:  and we're set.",
		},
		{
			name: "stray backticks removed",
			in:   "```\nhello\n```",
			want: "hello",
		},
		{
			name: "multiple fences",
			in:   "```json\n{}\n``` first ```json\n{}\n``` second",
			want: "first  second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanContent(tt.in); got != tt.want {
				t.Errorf("CleanContent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
