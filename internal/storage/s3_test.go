package storage

import (
	"testing"
)

func TestFolderName(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{
			name:   "trailing slash stripped",
			prefix: "service1/",
			want:   "service1",
		},
		{
			name:   "no trailing slash",
			prefix: "service1",
			want:   "service1",
		},
		{
			name:   "empty prefix",
			prefix: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := folderName(tt.prefix); got != tt.want {
				t.Errorf("folderName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFolderPrefix(t *testing.T) {
	tests := []struct {
		name   string
		folder string
		want   string
	}{
		{
			name:   "slash appended",
			folder: "service1",
			want:   "service1/",
		},
		{
			name:   "existing slash kept",
			folder: "service1/",
			want:   "service1/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := folderPrefix(tt.folder); got != tt.want {
				t.Errorf("folderPrefix() = %v, want %v", got, tt.want)
			}
		})
	}
}
