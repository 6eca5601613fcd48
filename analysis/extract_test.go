/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import "testing"

func TestUnfence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare json",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "json fence",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "json fence with prose around it",
			in:   "Here is the result:\n```json\n{\"a\": 1}\n```\nLet me know if you need more.",
			want: `{"a": 1}`,
		},
		{
			name: "anonymous fence",
			in:   "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "unterminated fence",
			in:   "```json\n{\"a\": 1}",
			want: `{"a": 1}`,
		},
		{
			name: "prose without fences",
			in:   "The answer is {\"a\": 1} as requested.",
			want: `{"a": 1}`,
		},
		{
			name: "whitespace",
			in:   "\n\n  {\"a\": 1}  \n",
			want: `{"a": 1}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unfence(tt.in); got != tt.want {
				t.Errorf("Unfence(): got = %q, wanted = %q", got, tt.want)
			}
		})
	}
}
