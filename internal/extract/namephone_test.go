package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "my name is", text: "my name is Maria", want: "Maria", wantOK: true},
		{name: "i'm", text: "Hi, I'm John", want: "John", wantOK: true},
		{name: "two words", text: "it's Maria Silva", want: "Maria Silva", wantOK: true},
		{name: "this is", text: "hello this is Pedro, I need a trim", want: "Pedro", wantOK: true},
		{name: "trailing punctuation", text: "my name is Anna.", want: "Anna", wantOK: true},
		{name: "stopword after intro", text: "I'm looking for a haircut", wantOK: false},
		{name: "stopword interested", text: "i am interested in coloring", wantOK: false},
		{name: "bare name is not extracted", text: "Maria", wantOK: false},
		{name: "no intro", text: "book me for tomorrow", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Name(tt.text)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "international", text: "call me at +1 555 123 4567", want: "15551234567", wantOK: true},
		{name: "dashes", text: "555-123-4567", want: "5551234567", wantOK: true},
		{name: "parentheses", text: "my number is (11) 98765-4321", want: "11987654321", wantOK: true},
		{name: "plain digits", text: "87654321", want: "87654321", wantOK: true},
		{name: "too short", text: "room 1234", wantOK: false},
		{name: "too long", text: "serial 12345678901234567890", wantOK: false},
		{name: "date is not a phone", text: "book me for 15/09/2025", wantOK: false},
		{name: "time is not a phone", text: "tomorrow at 15:30", wantOK: false},
		{name: "no digits", text: "no number, sorry", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Phone(tt.text)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPhoneAndNameTogether(t *testing.T) {
	name, ok := Name("I'm Maria, my number is 11 98765 4321")
	require.True(t, ok)
	assert.Equal(t, "Maria", name)

	phone, ok := Phone("I'm Maria, my number is 11 98765 4321")
	require.True(t, ok)
	assert.Equal(t, "11987654321", phone)
}
