package candidates

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hireloop-ats/hireloop/internal/shared"
)

func TestCanModify(t *testing.T) {
	candidate := &Candidate{UploadedBy: "sam"}

	cases := []struct {
		name string
		p    *shared.Principal
		want bool
	}{
		{"nil principal", nil, false},
		{"admin", &shared.Principal{Role: "admin", Name: "root"}, true},
		{"hr manager", &shared.Principal{Role: "hr_manager", Name: "dana"}, true},
		{"recruiter uploader", &shared.Principal{Role: "recruiter", Name: "sam"}, true},
		{"recruiter other", &shared.Principal{Role: "recruiter", Name: "kim"}, false},
		{"unknown role", &shared.Principal{Role: "intern", Name: "sam"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CanModify(tc.p, candidate))
		})
	}
}

func TestCanDeleteComment(t *testing.T) {
	comment := &Comment{Author: "sam"}

	require.False(t, CanDeleteComment(nil, comment))
	require.True(t, CanDeleteComment(&shared.Principal{Role: "admin", Name: "root"}, comment))
	require.True(t, CanDeleteComment(&shared.Principal{Role: "hr_manager", Name: "dana"}, comment))
	require.True(t, CanDeleteComment(&shared.Principal{Role: "recruiter", Name: "sam"}, comment))
	require.False(t, CanDeleteComment(&shared.Principal{Role: "recruiter", Name: "kim"}, comment))
}

func TestCanEditNote(t *testing.T) {
	note := &Note{UserID: 7}

	require.False(t, CanEditNote(nil, note))
	require.True(t, CanEditNote(&shared.Principal{Role: "admin", UserID: 1}, note))
	require.True(t, CanEditNote(&shared.Principal{Role: "recruiter", UserID: 7}, note))
	require.False(t, CanEditNote(&shared.Principal{Role: "hr_manager", UserID: 2}, note))
}
