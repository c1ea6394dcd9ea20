package factcheck

import "testing"

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{
			name:  "empty",
			state: newState(),
			want:  "No claims extracted.",
		},
		{
			name:  "loading",
			state: State{Loading: true, Claims: []string{}},
			want:  "_Processing..._",
		},
		{
			name:  "error only",
			state: State{Error: ptr(MsgLoadFailed)},
			want:  "**Error:** Failed to load data. Please try again.",
		},
		{
			name: "full",
			state: State{
				ThumbnailURL: ptr("http://img/t.jpg"),
				Claims:       []string{"Claim 1", "Claim\n2"},
			},
			want: "![Video thumbnail](http://img/t.jpg)\n\n## Extracted Claims\n\n- Claim 1\n- Claim 2",
		},
		{
			name: "thumbnail kept after claims failure",
			state: State{
				ThumbnailURL: ptr("X"),
				Error:        ptr(MsgLoadFailed),
			},
			want: "**Error:** Failed to load data. Please try again.\n\n![Video thumbnail](X)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.state); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}
