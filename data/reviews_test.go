package data

import (
	"strings"
	"testing"

	"github.com/avelarde/libris/internal/validator"
	"github.com/stretchr/testify/assert"
)

func TestValidateReview(t *testing.T) {
	tests := []struct {
		name    string
		rating  int
		comment string
		valid   bool
	}{
		{name: "lowest rating", rating: 1, valid: true},
		{name: "highest rating", rating: 5, valid: true},
		{name: "rating below range", rating: 0, valid: false},
		{name: "rating above range", rating: 6, valid: false},
		{name: "empty comment", rating: 3, comment: "", valid: true},
		{name: "comment at limit", rating: 3, comment: strings.Repeat("a", MaxCommentLength), valid: true},
		{name: "comment over limit", rating: 3, comment: strings.Repeat("a", MaxCommentLength+1), valid: false},
		{name: "multibyte comment at limit", rating: 3, comment: strings.Repeat("é", MaxCommentLength), valid: true},
		{name: "multibyte comment over limit", rating: 3, comment: strings.Repeat("é", MaxCommentLength+1), valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			ValidateReview(v, &Review{Rating: tt.rating, Comment: tt.comment})
			assert.Equal(t, tt.valid, v.Valid(), "errors: %v", v.Errors)
		})
	}
}
