package procstate

import (
	"reflect"
	"testing"
)

func TestParseCGroupLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want CGroup
		ok   bool
	}{
		{
			name: "cpu hierarchy",
			line: "7:cpu,cpuacct:/user.slice",
			want: CGroup{ID: 7, Controllers: []string{"cpu", "cpuacct"}, Path: "/user.slice"},
			ok:   true,
		},
		{
			name: "systemd pseudo-controller",
			line: "1:name=systemd:/user.slice/user-1000.slice",
			want: CGroup{ID: 1, Controllers: []string{"name=systemd"}, Path: "/user.slice/user-1000.slice"},
			ok:   true,
		},
		{
			name: "unified hierarchy, no controllers",
			line: "0::/user.slice",
			want: CGroup{ID: 0, Controllers: nil, Path: "/user.slice"},
			ok:   true,
		},
		{
			name: "malformed line",
			line: "not-a-cgroup-line",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCGroupLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseCGroupLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}
