package advice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"", Hindi},
		{"Hindi", Hindi},
		{"hindi", Hindi},
		{"हिंदी", Hindi},
		{"hi", Hindi},
		{"hi-IN", Hindi},
		{"hi-IN,en;q=0.5", Hindi},
		{"English", English},
		{"en-US", English},
		{"en-GB,hi;q=0.3", English},
		{"Tamil", English},
		{"mr", English},
		{"mr-IN", English},
		{"gu", English},
		{"sa", English},
		{"ur", English},
		{"ne", English},
		{"fr", English},
		{"not a tag!!", English},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLanguage(tt.in))
		})
	}
}

func TestLanguageTag(t *testing.T) {
	assert.Equal(t, language.Hindi, Hindi.Tag())
	assert.Equal(t, language.English, English.Tag())
}
