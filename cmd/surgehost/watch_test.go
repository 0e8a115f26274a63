package main

import "testing"

func TestUseTUI(t *testing.T) {
	cases := []struct {
		flag    string
		tty     bool
		want    bool
		wantErr bool
	}{
		{flag: "on", tty: false, want: true},
		{flag: "off", tty: true, want: false},
		{flag: "auto", tty: true, want: true},
		{flag: "auto", tty: false, want: false},
		{flag: "", tty: true, want: true},
		{flag: "  ON ", tty: false, want: true},
		{flag: "tui", wantErr: true},
		{flag: "yes", wantErr: true},
	}
	for _, tc := range cases {
		got, err := useTUI(tc.flag, tc.tty)
		if tc.wantErr {
			if err == nil {
				t.Errorf("useTUI(%q, %v): expected error, got none", tc.flag, tc.tty)
			}
			continue
		}
		if err != nil {
			t.Errorf("useTUI(%q, %v): unexpected error: %v", tc.flag, tc.tty, err)
			continue
		}
		if got != tc.want {
			t.Errorf("useTUI(%q, %v) = %v, want %v", tc.flag, tc.tty, got, tc.want)
		}
	}
}
