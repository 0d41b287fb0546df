package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_parseCSV(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []map[string]string
		wantErr bool
	}{
		{name: "empty input", data: ""},
		{name: "header only", data: "email,first_name\n"},
		{
			name: "simple table",
			data: "email,first_name\na@test.cd,Awe\nb@test.cd,King\n",
			want: []map[string]string{
				{"email": "a@test.cd", "first_name": "Awe"},
				{"email": "b@test.cd", "first_name": "King"},
			},
		},
		{
			name: "short row padded",
			data: "email,first_name,role\na@test.cd,Awe\n",
			want: []map[string]string{
				{"email": "a@test.cd", "first_name": "Awe", "role": ""},
			},
		},
		{
			name: "long row truncated",
			data: "email,first_name\na@test.cd,Awe,extra,junk\n",
			want: []map[string]string{
				{"email": "a@test.cd", "first_name": "Awe"},
			},
		},
		{
			name: "quoted values and padded header",
			data: "email, first_name \n\"a@test.cd\",\"Mbenza, Awe\"\n",
			want: []map[string]string{
				{"email": "a@test.cd", "first_name": "Mbenza, Awe"},
			},
		},
		{
			name: "no trailing newline",
			data: "email\na@test.cd",
			want: []map[string]string{
				{"email": "a@test.cd"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCSV(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCSV() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
