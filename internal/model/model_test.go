package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_Defaults(t *testing.T) {
	u := NewUser(UserInput{ID: "7", Email: "  Jane@Example.com ", Name: "Jane"})

	assert.Equal(t, "jane@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.False(t, u.EmailVerified)
	assert.Equal(t, "en", u.PreferredLanguage)
	assert.Equal(t, "UTC", u.Timezone)
	assert.Equal(t, StageEnquiry, u.CurrentVisaStage)
	assert.Equal(t, TierBronze, u.Tier)
	require.NotNil(t, u.Progress)
	assert.Equal(t, StageEnquiry, u.Progress.Current)
	assert.Len(t, u.Progress.Stages, 6)
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	u := NewUser(UserInput{ID: "1", Email: "a@b.c"})
	u.PasswordHash = "secret-hash"

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret-hash")
	assert.NotContains(t, string(b), "password")
}

func TestUser_JSONRoundTripIsEqual(t *testing.T) {
	u := NewUser(UserInput{ID: "1", Email: "a@b.c", Name: "A", VisaType: "student"})

	b, err := json.Marshal(u)
	require.NoError(t, err)
	var back User
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, *u, back)
}

func TestVisaStage_Progress(t *testing.T) {
	assert.Equal(t, 16, StageEnquiry.Progress())
	assert.Equal(t, 50, StageAssessment.Progress())
	assert.Equal(t, 100, StageCompleted.Progress())
	assert.Equal(t, 0, VisaStage("unknown").Progress())
	assert.Equal(t, -1, VisaStage("unknown").Index())
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, TierBronze, TierFor(0))
	assert.Equal(t, TierSilver, TierFor(500))
	assert.Equal(t, TierGold, TierFor(1500))
	assert.Equal(t, TierPlatinum, TierFor(9000))
}

func TestNewReferral_Defaults(t *testing.T) {
	r := NewReferral("r1", "JOHN-1", CreateReferralRequest{
		ReferrerID:    "1",
		ReferredName:  " Ana ",
		ReferredEmail: "ANA@mail.com",
	})

	assert.Equal(t, ReferralPending, r.Status)
	assert.Equal(t, DefaultReferralSource, r.Source)
	assert.Equal(t, "ana@mail.com", r.ReferredEmail)
	assert.Equal(t, "Ana", r.ReferredName)
	assert.Equal(t, "JOHN-1", r.ReferralCode)
	assert.Nil(t, r.ConvertedAt)
}

func TestNewNotification_Defaults(t *testing.T) {
	n := NewNotification("n1", CreateNotificationRequest{UserID: "1", Type: "bogus", Title: "Hi"})

	assert.Equal(t, NotificationGeneral, n.Type)
	assert.NotNil(t, n.Data)
	assert.False(t, n.Read)
	assert.Nil(t, n.ReadAt)
}

func TestNotification_MarkReadKeepsFirstReadTime(t *testing.T) {
	n := NewNotification("n1", CreateNotificationRequest{UserID: "1", Title: "Hi"})
	first := Now()
	n.MarkRead(first)
	n.MarkRead(first.Add(60_000_000_000))

	assert.True(t, n.Read)
	require.NotNil(t, n.ReadAt)
	assert.Equal(t, first, *n.ReadAt)
}

func TestNewAPIResponse_SuccessFromStatus(t *testing.T) {
	ok := NewAPIResponse("x", "fine", 201)
	assert.True(t, ok.Success)
	assert.NotEmpty(t, ok.Timestamp)

	bad := NewErrorResponse("nope", 400)
	assert.False(t, bad.Success)
	assert.Nil(t, bad.Data)

	def := NewAPIResponse(1, "", 0)
	assert.Equal(t, 200, def.StatusCode)
}

func TestAPIError_Shape(t *testing.T) {
	e := NewAPIError("", 500, "/x")
	assert.Equal(t, "An unexpected error occurred", e.Message)
	assert.Equal(t, APIErrorKind, e.Kind)

	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"error":"ApiError"`)
	assert.Contains(t, string(b), `"path":"/x"`)
}
