package data

import (
	"testing"
)

func TestSanitizeAnswer(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "bare object",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "prose around object",
			in:   "Sure, here you go:\n```json\n{\"a\": 1}\n```\nLet me know!",
			want: `{"a": 1}`,
		},
		{
			name: "nested objects",
			in:   `answer: {"steps": [{"skillKey": "x", "input": {"k": "v"}}]}`,
			want: `{"steps": [{"skillKey": "x", "input": {"k": "v"}}]}`,
		},
		{
			name: "braces inside strings",
			in:   `{"note": "a } inside", "b": 2} trailing`,
			want: `{"note": "a } inside", "b": 2}`,
		},
		{
			name:    "no object",
			in:      "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "unbalanced",
			in:      `{"a": {"b": 1}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeAnswer(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("got %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
